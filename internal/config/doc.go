// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

// Package config loads Classfront configuration with koanf.
//
// Sources, lowest to highest precedence:
//
//  1. Struct defaults (defaultConfig)
//  2. A YAML file: CONFIG_PATH, ./config.yaml or /etc/classfront/config.yaml
//  3. Environment variables listed in envMappings (API_URL, SESSION_STORE, ...)
//
// A minimal config.yaml:
//
//	backend:
//	  url: https://api.example.com/api
//	session:
//	  store: badger
//	  path: /data/sessions
//	  secure: true
//	server:
//	  environment: production
package config
