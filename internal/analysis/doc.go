// Package analysis computes the session and event reports from decoded
// workbook tables.
//
// An Analyzer wraps one dataset and the report filter options. The join of
// experiment users with their sessions is derived once per Analyzer and
// reused by the session filter, the daily flag counter and the visitor
// series, so all three always agree on the same rows.
//
// Every computation returns in-memory results only; writing files and
// rendering charts belong to the exporter and chart packages.
package analysis
