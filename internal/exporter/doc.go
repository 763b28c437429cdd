// Package exporter writes reporting periods to CSV and JSON files.
//
// Three CSV views are produced: one summary row per period, one row per
// categorized line item, and one row per add-back. CSV files carry a UTF-8
// BOM so Excel opens them correctly. The JSON export wraps the periods in a
// metadata envelope with a format tag and generation timestamp.
package exporter
