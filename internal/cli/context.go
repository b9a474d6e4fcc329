// Package cli provides the command-line interface for the batch application.
package cli

import (
	"github.com/law-makers/batch/internal/app"
)

// SetApp stores the Application for commands to access
func SetApp(a *app.Application) {
	globalApp = a
}

// GetApp retrieves the Application
func GetApp() *app.Application {
	return globalApp
}

// Global reference - commands run one at a time so no locking is needed
var globalApp *app.Application
