package league

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// teamAliases lists the spellings users type for each canonical team name:
// Portuguese and Spanish names, common English variants and FIFA codes.
// Canonical names follow the historical tables.
var teamAliases = map[string][]string{
	"Algeria":                {"argélia", "argelia", "alg"},
	"Argentina":              {"arg"},
	"Australia":              {"austrália", "aus", "socceroos"},
	"Austria":                {"áustria", "aut"},
	"Belgium":                {"bélgica", "belgica", "bel"},
	"Bolivia":                {"bolívia", "bol"},
	"Bosnia and Herzegovina": {"bósnia", "bosnia", "bósnia e herzegovina", "bosnia-herzegovina", "bih"},
	"Brazil":                 {"brasil", "bra", "seleção", "selecao"},
	"Cameroon":               {"camarões", "camaroes", "camerún", "cmr"},
	"Canada":                 {"canadá", "can"},
	"Chile":                  {"chi"},
	"China PR":               {"china", "chn"},
	"Colombia":               {"colômbia", "col"},
	"Costa Rica":             {"crc"},
	"Croatia":                {"croácia", "croacia", "hrvatska", "cro"},
	"Czech Republic":         {"república tcheca", "republica tcheca", "tchéquia", "chéquia", "czechia", "cze"},
	"Denmark":                {"dinamarca", "den"},
	"Ecuador":                {"equador", "ecu"},
	"Egypt":                  {"egito", "egipto", "egy"},
	"England":                {"inglaterra", "eng"},
	"France":                 {"frança", "francia", "fra"},
	"Germany":                {"alemanha", "alemania", "deutschland", "ger"},
	"Ghana":                  {"gana", "gha"},
	"Greece":                 {"grécia", "grecia", "gre"},
	"Iceland":                {"islândia", "islandia", "isl"},
	"Iran":                   {"irã", "irão", "ir iran", "irn"},
	"Italy":                  {"itália", "italia", "ita"},
	"Ivory Coast":            {"costa do marfim", "costa de marfil", "côte d'ivoire", "cote d'ivoire", "civ"},
	"Japan":                  {"japão", "japon", "jpn"},
	"Mexico":                 {"méxico", "mex"},
	"Morocco":                {"marrocos", "marruecos", "mar"},
	"Netherlands":            {"holanda", "países baixos", "paises bajos", "holland", "ned"},
	"New Zealand":            {"nova zelândia", "nueva zelanda", "nzl"},
	"Nigeria":                {"nigéria", "nga"},
	"Norway":                 {"noruega", "nor"},
	"Paraguay":               {"paraguai", "par"},
	"Peru":                   {"perú", "per"},
	"Poland":                 {"polônia", "polonia", "pol"},
	"Portugal":               {"por"},
	"Qatar":                  {"catar", "qat"},
	"Republic of Ireland":    {"irlanda", "ireland", "irl"},
	"Russia":                 {"rússia", "rusia", "rus"},
	"Saudi Arabia":           {"arábia saudita", "arabia saudita", "ksa"},
	"Scotland":               {"escócia", "escocia", "sco"},
	"Senegal":                {"sen"},
	"Serbia":                 {"sérvia", "srb"},
	"Slovakia":               {"eslováquia", "eslovaquia", "svk"},
	"Slovenia":               {"eslovênia", "eslovenia", "svn"},
	"South Africa":           {"áfrica do sul", "sudáfrica", "rsa"},
	"South Korea":            {"coreia do sul", "corea del sur", "korea republic", "korea", "kor"},
	"Spain":                  {"espanha", "españa", "esp"},
	"Sweden":                 {"suécia", "suecia", "swe"},
	"Switzerland":            {"suíça", "suiza", "sui"},
	"Tunisia":                {"tunísia", "túnez", "tun"},
	"Turkey":                 {"turquia", "türkiye", "tur"},
	"Ukraine":                {"ucrânia", "ucrania", "ukr"},
	"United States":          {"estados unidos", "eua", "eeuu", "usa", "us", "united states of america"},
	"Uruguay":                {"uruguai", "uru"},
	"Wales":                  {"país de gales", "gales", "wal"},
}

// Resolver maps free-form team names onto canonical names.
// It is read-only after construction and safe for concurrent use.
type Resolver struct {
	aliases map[string]string
}

// NewResolver builds a resolver from the built-in alias table plus extra
// alias -> canonical entries, which win over built-in ones.
func NewResolver(extra map[string]string) *Resolver {
	r := &Resolver{aliases: make(map[string]string, len(teamAliases)*4)}
	for canonical, variants := range teamAliases {
		r.add(canonical, canonical)
		for _, v := range variants {
			r.add(v, canonical)
		}
	}
	for alias, canonical := range extra {
		r.add(canonical, canonical)
		r.add(alias, canonical)
	}
	return r
}

func (r *Resolver) add(alias, canonical string) {
	key := normalizeKey(alias)
	if key == "" {
		return
	}
	r.aliases[key] = canonical
	r.aliases[foldAccents(key)] = canonical
}

// Resolve never fails. Unmapped names fall back to title case, which may
// still miss the tables; callers then get default features.
func (r *Resolver) Resolve(raw string) string {
	key := normalizeKey(raw)
	if name, ok := r.aliases[key]; ok {
		return name
	}
	if name, ok := r.aliases[foldAccents(key)]; ok {
		return name
	}
	return titleCase(strings.TrimSpace(raw))
}

// Known reports whether raw hits the alias table.
func (r *Resolver) Known(raw string) bool {
	key := normalizeKey(raw)
	if _, ok := r.aliases[key]; ok {
		return true
	}
	_, ok := r.aliases[foldAccents(key)]
	return ok
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// foldAccents strips combining marks: "méxico" -> "mexico".
// Transformers keep state, so a fresh chain is built per call.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
