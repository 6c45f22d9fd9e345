package internal

import "regexp"

// videoLinkPattern matches links on the platforms the service can fetch from.
// Matching is syntactic only; reachability is never checked.
var videoLinkPattern = regexp.MustCompile(
	`(?i)^(https?://)?(www\.)?(youtube|youtu|youtube-nocookie|facebook|dailymotion|twitter)\.(com|be)`,
)

// Classify decides once whether the argument is a video link or a local file path.
// The input is matched and kept as given, so a path with surrounding spaces stays a path.
func Classify(input string) AudioSource {
	if videoLinkPattern.MatchString(input) {
		return AudioSource{Kind: SourceRemoteLink, Input: input}
	}
	return AudioSource{Kind: SourceLocalFile, Input: input}
}
