// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

/*
Package main is the entry point for the Classfront server.

Classfront is the web front end of an online course store. It renders
Inertia pages for a Vite-built client, keeps visitors signed in with
server-side sessions and forwards every data request to the course REST
API with the visitor's bearer token.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("classfront")
	├── SessionSupervisor ("session-layer")
	│   ├── Session cleanup (expired session sweep)
	│   └── Badger GC (value log GC, badger store only)
	└── WebSupervisor ("web-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Session store: memory or BadgerDB, bearer tokens encrypted at rest
 4. Course API client: retries, rate limit and circuit breaker
 5. Authorization: Casbin admin policy
 6. Assets: Vite manifest, hot file and asset version
 7. Inertia renderer and handlers
 8. Supervisor Tree and HTTP Server

# Configuration

Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8000
	APP_ENV=production            # development, staging, production
	LOG_LEVEL=info                # trace, debug, info, warn, error
	LOG_FORMAT=json               # json or console

	# Course API
	API_URL=http://localhost:5000/api
	API_ASSET_ORIGIN=http://localhost:5000

	# Sessions
	SESSION_STORE=badger          # memory or badger
	SESSION_STORE_PATH=/data/sessions
	SESSION_ENCRYPTION_KEY=<base64 32 bytes>
	SESSION_SECURE_COOKIE=true

A YAML file named by CONFIG_PATH (or ./config.yaml) may hold the same
settings and is watched for log level changes.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests (shutdown timeout)
 3. Stops the session services
 4. Closes the session database
 5. Reports any services that failed to stop

# Usage Examples

Development against a local API and Vite dev server:

	export API_URL=http://localhost:5000/api
	export VITE_DEV_SERVER_URL=http://localhost:5173
	go run ./cmd/server

Production:

	export APP_ENV=production
	export SESSION_STORE=badger SESSION_SECURE_COOKIE=true
	export SESSION_ENCRYPTION_KEY=$(openssl rand -base64 32)
	./classfront

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: Routes and handlers
  - internal/inertia: Page protocol
*/
package main
