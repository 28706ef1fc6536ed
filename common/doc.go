// Package common provides shared constants, types, utilities, and interfaces
// used throughout the Remote Manager application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like timeouts, file names, and themes
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Interfaces: Abstractions for secret storage, notifications, and logging
//   - Logger: Structured logging with multiple output destinations
//   - Utils: Common utility functions for file operations and string manipulation
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/yllada/remote-manager/common"
//
//	// Use constants
//	delay := common.SettleDelay
//
//	// Use logger
//	common.LogInfo("Connecting to %s", profileName)
//
//	// Check errors
//	if errors.Is(err, common.ErrProfileNotFound) {
//	    // Handle missing profile
//	}
package common
