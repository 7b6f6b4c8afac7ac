// Package config loads and validates clipcap's TOML configuration.
//
// Configuration lives at ~/.config/clipcap/config.toml by default, with a
// clipcap.toml in the working directory as a development fallback. Loading
// always succeeds without a file: defaults cover every field, and secrets
// (the OpenAI API key) can come from the environment. Paths are expanded
// and made absolute during normalization so downstream packages never see
// a ~ again.
package config
