// Package config loads fold-drive configuration from YAML.
//
// Values in the form ${VAR_NAME} are expanded from the environment before
// parsing, so secrets can stay out of the file. Sensible local-deployment
// defaults are applied for everything except auth.jwt_secret, which is
// always required.
package config
