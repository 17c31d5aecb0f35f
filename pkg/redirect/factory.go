package redirect

import (
	"fmt"
	"path/filepath"
)

// RepositoryConfig contains configuration for creating redirect repositories
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories (DBTX interface)
	DB DBTX
	// DataDir is required for file-based repositories
	DataDir string
}

// NewRepositories creates the rule and marker repositories for a persistence type
func NewRepositories(persistenceType string, config RepositoryConfig) (RuleRepository, MarkerRepository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, nil, fmt.Errorf("db required for postgres repository")
		}
		return NewPostgresRuleRepository(config.DB), NewPostgresMarkerRepository(config.DB), nil
	case "file":
		if config.DataDir == "" {
			return nil, nil, fmt.Errorf("dataDir required for file repository")
		}
		dir := filepath.Join(config.DataDir, "redirect")
		rules, err := NewFileRuleRepository(dir)
		if err != nil {
			return nil, nil, err
		}
		markers, err := NewFileMarkerRepository(dir)
		if err != nil {
			return nil, nil, err
		}
		return rules, markers, nil
	case "memory", "inmem", "":
		return NewInMemoryRuleRepository(), NewInMemoryMarkerRepository(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, file, memory)", persistenceType)
	}
}
