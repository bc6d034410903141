// Package config loads calmux settings from CALMUX_* environment variables.
//
// A .env file in the working directory is read first when present, so local
// development does not need the variables exported in the shell. Command line
// flags are applied on top by the cmd package.
package config
