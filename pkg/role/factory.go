package role

import (
	"fmt"
	"path/filepath"
)

// RepositoryConfig contains configuration for creating role repositories
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories (DBTX interface)
	DB DBTX
	// DataDir is required for file-based repositories
	DataDir string
}

// NewRoleRepository creates a role repository based on the persistence type
func NewRoleRepository(persistenceType string, config RepositoryConfig) (RoleRepository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, fmt.Errorf("db required for postgres repository")
		}
		return NewPostgresRoleRepository(config.DB), nil
	case "file":
		if config.DataDir == "" {
			return nil, fmt.Errorf("dataDir required for file repository")
		}
		return NewFileRoleRepository(filepath.Join(config.DataDir, "role"))
	case "memory", "inmem", "":
		return NewInMemoryRoleRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, file, memory)", persistenceType)
	}
}
