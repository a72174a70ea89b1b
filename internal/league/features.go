package league

// FeatureNames is the column order the model was trained on. Changing it
// breaks every exported model.
var FeatureNames = []string{
	"diferenca_ranking",
	"e_copa_do_mundo",
	"avg_scored_home",
	"avg_conceded_home",
	"avg_scored_away",
	"avg_conceded_away",
}

// FeatureVector is the model input for one match.
type FeatureVector struct {
	RankDiff     float64 // away rank - home rank
	WorldCup     float64 // 1 for World Cup matches, else 0
	HomeScored   float64
	HomeConceded float64
	AwayScored   float64
	AwayConceded float64
}

// Values returns the features in FeatureNames order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.RankDiff,
		v.WorldCup,
		v.HomeScored,
		v.HomeConceded,
		v.AwayScored,
		v.AwayConceded,
	}
}

// Map keys the features by their training column name.
func (v FeatureVector) Map() map[string]float64 {
	vals := v.Values()
	out := make(map[string]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		out[name] = vals[i]
	}
	return out
}

// History is the read side of the historical tables. Lookups for unknown
// teams return DefaultRank and DefaultScored/DefaultConceded.
type History interface {
	LatestRank(team string) float64
	LatestStats(team string) (scored, conceded float64)
}

// Assembler turns two canonical team names into a FeatureVector.
type Assembler struct {
	history History
}

func NewAssembler(h History) *Assembler {
	return &Assembler{history: h}
}

// Assemble reads both tables for each team. A lower rank is better, so a
// positive RankDiff favours the home side.
func (a *Assembler) Assemble(home, away string, isWorldCup bool) FeatureVector {
	// 1) rankings
	rankHome := a.history.LatestRank(home)
	rankAway := a.history.LatestRank(away)

	// 2) scoring form
	scoredHome, concededHome := a.history.LatestStats(home)
	scoredAway, concededAway := a.history.LatestStats(away)

	v := FeatureVector{
		RankDiff:     rankAway - rankHome,
		HomeScored:   scoredHome,
		HomeConceded: concededHome,
		AwayScored:   scoredAway,
		AwayConceded: concededAway,
	}
	if isWorldCup {
		v.WorldCup = 1
	}
	return v
}
