// Package config loads the rule document for searchreplace.
//
//	            +-------------+
//	            |   Config    |
//	            |  ([]Rule)   |
//	            +------+------+
//	                   |
//	      +------------+------------+
//	      |            |            |
//	+-----+-----+ +----+----+ +-----+-----+
//	|   YAML    | |  JSON   | |    HCL    |
//	|  Parser   | | Parser  | |  Parser   |
//	+-----------+ +---------+ +-----------+
//
// 🎯 Purpose:
// - Reads an ordered list of rules from a file
// - Validates every rule before anything is scanned
// - Compiles rules into text.Rule values
//
// 🔄 Flow:
// 1. Reads the file (ErrNotFound when missing)
// 2. Picks a parser by extension, YAML by default
// 3. Validates required fields and glob syntax (ErrConfig)
// 4. Hands the rules to the operation runner in document order
//
// 📄 YAML:
//
//   - search: typo
//     replacement: fixed
//   - search: /\s+$/
//     replacement: ""
//     description: trailing whitespace
//     files: ["**/*.go"]
//
// 📄 HCL:
//
//	rule {
//	  search      = "Copyright 2024"
//	  replacement = "Copyright ${env.YEAR}"
//	}
//
// 🔍 Example:
//
//	cfg, err := config.Load(ctx, config.DefaultPath)
//	if errors.Is(err, config.ErrNotFound) {
//		// fall back to command line rule
//	}
package config
