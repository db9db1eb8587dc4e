// Package stats provides the descriptive statistics used by report
// generation: Pearson correlation, date alignment of two daily series,
// rolling means, first differences, and least-squares trendlines.
package stats
