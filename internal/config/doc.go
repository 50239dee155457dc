// Package config provides configuration parsing for the scope state server.
//
// The configuration is stored in scope.json, scope.yaml or scope.yml. When
// a directory holds more than one, scope.json wins.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 4040
//	  },
//	  "persistence": {
//	    "enabled": true,
//	    "backend": "bolt",
//	    "path": "scope.db"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "scope"
//	  },
//	  "tracing": {
//	    "tracerName": "scope"
//	  }
//	}
//
// The same structure in YAML uses the same keys.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
