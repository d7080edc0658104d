package chainballotx

import "time"

const day = 24 * time.Hour

// FallbackProposals returns the demo proposals shown when the contract has none or cannot be
// read.
func FallbackProposals(now time.Time) []Proposal {
	return []Proposal{
		{
			ID:           0,
			Title:        "Welcome to ChainBallotX!",
			Description:  "This is a demo proposal created automatically. Create your first real proposal with the form on the Governance page. Voting is decentralized and transparent on the MultiversX blockchain.",
			Creator:      "erd1demo1234567890abcdef1234567890abcdef1234567890abcdef12",
			VotesFor:     15,
			VotesAgainst: 3,
			Status:       StatusOpen,
			CreatedAt:    now.Add(-2 * day),
			EndsAt:       now.Add(5 * day),
			Active:       true,
			Placeholder:  true,
		},
		{
			ID:           1,
			Title:        "Implement a Rewards System",
			Description:  "Proposal to implement a rewards system for active users of the platform. It would encourage participation in governance and build a more engaged ecosystem.",
			Creator:      "erd1example1234567890abcdef1234567890abcdef1234567890abcdef12",
			VotesFor:     28,
			VotesAgainst: 7,
			Status:       StatusOpen,
			CreatedAt:    now.Add(-1 * day),
			EndsAt:       now.Add(6 * day),
			Active:       true,
			Placeholder:  true,
		},
		{
			ID:           2,
			Title:        "Improve the User Interface",
			Description:  "Proposal to redesign the user interface with a focus on experience and accessibility. It would include a dark mode, better responsiveness and more intuitive navigation.",
			Creator:      "erd1ui1234567890abcdef1234567890abcdef1234567890abcdef12",
			VotesFor:     42,
			VotesAgainst: 5,
			Status:       StatusOpen,
			CreatedAt:    now.Add(-3 * day),
			EndsAt:       now.Add(4 * day),
			Active:       true,
			Placeholder:  true,
		},
	}
}
