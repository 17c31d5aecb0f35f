// Package role provides the ordered role directory used by login redirects.
//
// Roles carry a position, and every listing (all roles, or the roles of one
// user) comes back ordered by position, then creation time. The redirect
// package relies on that order to break ties between roles.
//
// # Overview
//
// The role package provides:
//   - Role creation, lookup and deletion
//   - User-role assignments
//   - Repository implementations for memory, JSON files and PostgreSQL
//
// # Basic Usage
//
//	repo, err := role.NewRoleRepository("memory", role.RepositoryConfig{})
//	service := role.NewRoleService(repo)
//
//	// Create roles; without a position each role is appended
//	_, err = service.CreateRole(ctx, role.CreateRoleParams{Name: "administrator"})
//	_, err = service.CreateRole(ctx, role.CreateRoleParams{Name: "editor"})
//
//	// Assign user to role
//	err = service.AddUserToRole(ctx, "editor", userID)
//
//	// Names in list order
//	names, err := service.GetUserRoles(ctx, userID)
//
// RoleService satisfies redirect.RoleDirectory.
package role
