// Package utils holds the process-level plumbing shared by relkit commands:
// layered configuration loading with Viper, dotenv environment files and zap
// logger construction.
package utils
