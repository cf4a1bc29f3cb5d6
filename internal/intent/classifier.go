// Package intent classifies customer queries into coarse telecom intents.
package intent

import "strings"

// Label is a coarse intent category attached to every backend reply.
type Label string

const (
	Unknown   Label = "unknown"
	Greeting  Label = "greeting"
	Balance   Label = "balance"
	Recharge  Label = "recharge"
	Plan      Label = "plan"
	DataUsage Label = "data_usage"
	Bill      Label = "bill"
	Network   Label = "network"
	Roaming   Label = "roaming"
	Support   Label = "support"
)

// Decision is the classification outcome for one query.
type Decision struct {
	Intent     Label
	Score      int
	Confidence float64
}

// Known reports whether the query matched any bucket.
func (d Decision) Known() bool {
	return d.Intent != Unknown
}

var keywordBuckets = map[Label][]string{
	Balance: {
		"balance", "account balance", "how much money", "remaining amount", "main balance",
		"बैलेंस", "शेष राशि", "kitna balance", "balance enna", "mera balance",
	},
	Recharge: {
		"recharge", "top up", "top-up", "topup", "prepaid pack", "recharge pannu",
		"रिचार्ज", "रीचार्ज", "recharge karna", "recharge cheyandi",
	},
	Plan: {
		"plan", "plans", "compare", "comparison", "upgrade", "cheaper", "best offer",
		"प्लान", "योजना", "plan badlo", "unlimited pack",
	},
	DataUsage: {
		"data", "internet", "usage", "gb left", "data left", "speed pack",
		"डेटा", "data kitna", "evvalavu data",
	},
	Bill: {
		"bill", "invoice", "due date", "payment due", "postpaid bill", "outstanding",
		"बिल", "बकाया", "bill kitna",
	},
	Network: {
		"network", "signal", "coverage", "no bars", "call drop", "slow internet",
		"नेटवर्क", "सिग्नल", "signal illa",
	},
	Roaming: {
		"roaming", "international", "abroad", "travelling", "travel pack",
		"रोमिंग", "videsh",
	},
	Support: {
		"agent", "human", "complaint", "customer care", "help me", "talk to someone",
		"शिकायत", "एजेंट", "baat karni",
	},
	Greeting: {
		"hello", "hi!", "hey", "good morning", "good evening", "namaste", "vanakkam",
		"नमस्ते", "नमस्कार",
	},
}

// rankOrder breaks score ties so classification is deterministic; more
// specific intents outrank broader ones.
var rankOrder = []Label{
	Roaming, Recharge, Balance, DataUsage, Bill, Network, Plan, Support, Greeting,
}

// Classify scores the query against every keyword bucket and returns the
// best-matching intent. An unmatched query yields Unknown with zero confidence.
func Classify(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Intent: Unknown}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if word == "" {
				continue
			}
			if strings.Contains(normalized, strings.ToLower(word)) {
				scores[label] += 3
			}
		}
	}

	bestLabel := Unknown
	bestScore := 0
	for _, label := range rankOrder {
		if s := scores[label]; s > bestScore {
			bestScore = s
			bestLabel = label
		}
	}

	if bestScore == 0 {
		return Decision{Intent: Unknown}
	}

	hits := bestScore / 3
	confidence := 0.6 + 0.08*float64(hits)
	if confidence > 0.95 {
		confidence = 0.95
	}

	return Decision{Intent: bestLabel, Score: bestScore, Confidence: confidence}
}
