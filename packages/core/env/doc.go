// Package env handles variables for the webbrowser CLI.
//
// It provides functionality for:
//   - Loading .env files
//   - {{name}} interpolation from variables and captured response values
//   - {{fn(args)}} calls to the builtin functions
//   - {{$NAME}} and ${NAME} interpolation from the process environment
package env
