package objective

type entry struct {
	description string
	videoURL    string
}

var catalog = map[Kind]entry{
	KindMinTradingDays: {
		description: "You must place trades on at least the required number of distinct days before the challenge can be passed. Days are counted from the first trade on the account.",
		videoURL:    "https://www.youtube.com/embed/3Yc5rO8tQm4",
	},
	KindMaxDailyLoss: {
		description: "On no single trading day may your loss, realized or floating, exceed this amount. The limit is a fixed share of the initial balance.",
		videoURL:    "https://www.youtube.com/embed/Wq2Zp1mXcE8",
	},
	KindMaxTotalLoss: {
		description: "Your account equity may never fall below the initial balance by more than this amount at any point during the challenge.",
		videoURL:    "https://www.youtube.com/embed/kN7dJr5vLsA",
	},
	KindProfitTarget: {
		description: "Reach this net profit while respecting every loss limit to complete the phase.",
		videoURL:    "https://www.youtube.com/embed/Hh4uTz9bQeY",
	},
}

func describe(o *Objective) {
	if e, ok := catalog[o.Kind]; ok {
		o.Description = e.description
		o.ExplainerVideoURL = e.videoURL
	}
}
