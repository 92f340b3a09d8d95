// Package config loads the innstack server configuration from the `server:`
// section of config.yaml.
//
// Config fields:
//   - HTTPPort                 — port for the REST API, WebSocket form and /metrics (default 8080)
//   - LogLevel                 — debug | info | warn | error (default info)
//   - Auth.Mode                — "apikey" or "none"
//   - Auth.KeyEnv              — environment variable holding the expected API key
//   - Auth.Header              — HTTP header name (default "x-api-key")
//   - Session.TTL              — idle lifetime of a REST form session (default 30m)
//   - Display.CurrencySymbol   — prefix for currency outputs (default "$")
//   - Display.Locale           — BCP 47 tag for grouping separators (default "en-US")
//   - WS.ReadLimit             — largest accepted client frame in bytes (default 4096)
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) reloads the file on write or rename-over-path
// saves using fsnotify on the parent directory.
package config
