package builtin

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"healthetl/internal/schema"
	"healthetl/internal/transformer"
	"healthetl/pkg/records"
)

// honorific matches a leading title: Dr., Mr., Mrs., Ms. (period required)
// or MD, DVM, DDS followed by whitespace.
var honorific = regexp.MustCompile(`^(?i:(?:dr|mrs|mr|ms)\.\s*|(?:md|dvm|dds)\s+)`)

// Fallback values of the closed vocabularies.
const (
	UnknownGender    = "Unknown"
	UnknownBloodType = "Unknown"
	InconclusiveTest = "Inconclusive"
)

// Normalize maps categorical columns onto their vocabularies, title-cases
// medical_condition and strips honorifics from name. Out-of-vocabulary
// values are replaced and counted.
type Normalize struct {
	Contract schema.Contract
}

func (Normalize) Name() string { return "normalize" }

func (n Normalize) Apply(ctx context.Context, in []records.Record, rep *transformer.Report) ([]records.Record, error) {
	title := cases.Title(language.English)
	bloodTypes := n.enum(schema.ColBloodType)
	outcomes := n.enum(schema.ColTestResults)

	for _, r := range in {
		g, changed := Gender(str(r, schema.ColGender))
		if changed {
			rep.Normalized[schema.ColGender]++
		}
		r[schema.ColGender] = g

		bt := strings.ToUpper(str(r, schema.ColBloodType))
		if !slices.Contains(bloodTypes, bt) {
			if bt != strings.ToUpper(UnknownBloodType) {
				rep.Normalized[schema.ColBloodType]++
			}
			bt = UnknownBloodType
		}
		r[schema.ColBloodType] = bt

		r[schema.ColMedicalCondition] = title.String(str(r, schema.ColMedicalCondition))

		tr := title.String(str(r, schema.ColTestResults))
		if !slices.Contains(outcomes, tr) {
			rep.Normalized[schema.ColTestResults]++
			tr = InconclusiveTest
		}
		r[schema.ColTestResults] = tr

		r[schema.ColName] = StripHonorific(str(r, schema.ColName))
	}

	if transformer.Total(rep.Normalized) > 0 {
		zerolog.Ctx(ctx).Warn().Dict("fallbacks", transformer.Dict(rep.Normalized)).Msg("values outside vocabulary replaced")
	}
	return in, nil
}

func (n Normalize) enum(col string) []string {
	f, _ := n.Contract.Field(col)
	return f.Enum
}

// Gender capitalizes male/female, expands M/F and maps anything else to
// Unknown. changed reports a fallback to Unknown from another value.
func Gender(s string) (g string, changed bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return "Male", false
	case "female", "f":
		return "Female", false
	case "unknown":
		return UnknownGender, false
	default:
		return UnknownGender, true
	}
}

// StripHonorific removes one leading title and surrounding space.
func StripHonorific(name string) string {
	return strings.TrimSpace(honorific.ReplaceAllString(strings.TrimSpace(name), ""))
}

func str(r records.Record, col string) string {
	s, _ := r[col].(string)
	return strings.TrimSpace(s)
}
