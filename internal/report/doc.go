// Package report renders market comparison charts: interactive HTML
// pages (price overlays, scatter correlation, volume bars, candidate
// breakdowns) and static PNG dashboards.
package report
