package ladder

// Supported games.
const (
	MobileLegends = "Mobile Legends"
	PUBGMobile    = "PUBG Mobile"
	FreeFire      = "Free Fire"
)

// Default returns the shipped catalog. Each call returns a fresh copy.
//
// The PUBG Mobile table keeps the ("Silve", "Gold") key as shipped, so the
// Silver -> Gold step prices at 0. Defects reports it; fix the table here,
// not in the engine.
func Default() *Catalog {
	return &Catalog{
		Games: []string{MobileLegends, PUBGMobile, FreeFire},
		Ladders: map[string][]string{
			MobileLegends: {
				"Warrior", "Elite", "Master", "Grandmaster", "Epic",
				"Legend", "Mythic", "Mythical Honor", "Mythical Glory", "Mythical Immortal",
			},
			PUBGMobile: {
				"Bronze", "Silver", "Gold", "Platinum", "Diamond",
				"Crown", "Ace", "Ace Mentor", "Ace Dominator", "Conqueror",
			},
			FreeFire: {
				"Bronze", "Silver", "Gold", "Platinum", "Diamond", "Heroic", "Grandmaster",
			},
		},
		Prices: map[string]map[Step]int64{
			MobileLegends: {
				{"Warrior", "Elite"}:                    27000,
				{"Elite", "Master"}:                     42000,
				{"Master", "Grandmaster"}:               64000,
				{"Grandmaster", "Epic"}:                 125000,
				{"Epic", "Legend"}:                      150000,
				{"Legend", "Mythic"}:                    175000,
				{"Mythic", "Mythical Honor"}:            200000,
				{"Mythical Honor", "Mythical Glory"}:    225000,
				{"Mythical Glory", "Mythical Immortal"}: 600000,
			},
			PUBGMobile: {
				{"Bronze", "Silver"}:            30000,
				{"Silve", "Gold"}:               50000,
				{"Gold", "Platinum"}:            75000,
				{"Platinum", "Diamond"}:         100000,
				{"Diamond", "Crown"}:            130000,
				{"Crown", "Ace"}:                220000,
				{"Ace", "Ace Mentor"}:           250000,
				{"Ace Mentor", "Ace Dominator"}: 320000,
				{"Ace Dominator", "Conqueror"}:  700000,
			},
			FreeFire: {
				{"Bronze", "Silver"}:      18000,
				{"Silver", "Gold"}:        36000,
				{"Gold", "Platinum"}:      74000,
				{"Platinum", "Diamond"}:   80000,
				{"Diamond", "Heroic"}:     180000,
				{"Heroic", "Grandmaster"}: 450000,
			},
		},
		PaymentMethods: []string{"GoPay", "OVO", "DANA", "ShopeePay"},
	}
}
