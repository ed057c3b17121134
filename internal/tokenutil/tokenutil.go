// Package tokenutil provides the token estimate used for prompt telemetry.
// The estimate is a documented approximation (roughly four characters per
// token for English prose); it is logged and exported as a metric, never
// used to reject or truncate an assembled prompt.
package tokenutil

// EstimateTokens returns ceil(len(content)/4).
func EstimateTokens(content string) int {
	if content == "" {
		return 0
	}
	return (len(content) + 3) / 4
}
