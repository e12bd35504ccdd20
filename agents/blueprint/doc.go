/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package blueprint declares agents, their tools and workflows in YAML.
//
//	agents:
//	  - name: analyst
//	    model: gpt-4o
//	    instruction: Answer with data.
//	    containers:
//	      - name: run_sql
//	        description: Run a SQL query
//	        image: cgr.dev/chainguard/sqlite
//	        command: [sh, -c, 'sqlite3 /data/db "$QUERY"']
//	        environment:
//	          - name: QUERY
//	            type: string
//	            description: The query to run
//	        volumes: [/srv/data:/data:ro]
//	  - name: writer
//	    model: claude-sonnet-4-5
//	    instruction: Turn findings into prose.
//	workflows:
//	  - name: report
//	    steps:
//	      - name: analyze
//	        agent: analyst
//	        next:
//	          - step: write
//	      - name: write
//	        agent: writer
//
// Load parses and validates a blueprint; Apply builds and registers
// everything it declares on a workflow manager.
package blueprint
