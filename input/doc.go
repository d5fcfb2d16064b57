// Package input loads stage input specifications and opens the inputs they name.
//
// A specification is a YAML document listing the inputs of one stage:
//
//	name: wordfreq
//	inputs:
//	  - url: data/part-0001.txt
//	    strval: en
//	  - url: https://example.com/part-0002.txt
//	    i64val: 2
//
// Inputs are local paths, file:// URLs or http(s):// URLs. Remote inputs are fetched with
// retries and an optional request rate limit.
package input
