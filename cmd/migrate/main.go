package main

import (
	"log/slog"
	"os"

	"github.com/fulcrumproject/taskdb/datasource"
	"github.com/fulcrumproject/taskdb/env"
)

// dataSource is resolved once when the package loads, after any .env file is read
var dataSource = loadDataSource()

func loadDataSource() datasource.CLIOptions {
	if err := env.LoadFiles(".env"); err != nil {
		slog.Warn("Failed to load .env files", "error", err)
	}
	return datasource.NewCLIOptions(env.OS())
}

func main() {
	if err := newRootCmd(dataSource).Execute(); err != nil {
		os.Exit(1)
	}
}
