// formzone validates the output of a scanned-form capture batch against the
// rules of its project.
//
// A project folder holds json/project_config.json (the declared validation
// rules, an optional lookup list and field types) and the page layouts
// json/1.json, json/2.json, and so on. A batch produces an output CSV with one
// row per document; formzone runs the rules over those rows and writes each
// failure back into the row's Comments cell for QC review.
//
// Usage:
//
//	# Validate every document of a batch
//	formzone validate batch --project ./census --csv ./batch1/index.csv
//
//	# Validate one document
//	formzone validate document --row 3
//
//	# Review the QC comments of a batch
//	formzone comments list
//
//	# Re-validate whenever the project's rules or lookup list change
//	formzone watch --config formzone.yaml
//
//	# Show recorded validation runs
//	formzone history list
package main

import "os"

func main() {
	os.Exit(Execute())
}
