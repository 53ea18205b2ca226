// Package config loads stress run settings from YAML.
//
//	log_level: debug
//	workers: 8
//	iterations: 50000
//	objects: 128
//	fence_interval: 500us
//	limits:
//	  Texture: 4096
//	  Sampler: 256
//
// Resource type names are those printed by handle.Type.String.
package config
