package event

// Category is one of the occasions offered by the creation wizard
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Group string `json:"group"`
}

const (
	GroupMostPopular   = "Most Popular"
	GroupMoreOccasions = "More Occasions"
)

var categories = []Category{
	{"birthday", "Birthday", GroupMostPopular},
	{"wedding", "Wedding", GroupMostPopular},
	{"anniversary", "Anniversary", GroupMostPopular},
	{"graduation", "Graduation", GroupMostPopular},
	{"retirement", "Retirement", GroupMostPopular},
	{"farewell", "Farewell", GroupMostPopular},
	{"baby_shower", "Baby Shower", GroupMostPopular},
	{"bridal_shower", "Bridal Shower", GroupMostPopular},

	{"engagement", "Engagement", GroupMoreOccasions},
	{"housewarming", "Housewarming", GroupMoreOccasions},
	{"get_well", "Get Well Soon", GroupMoreOccasions},
	{"sympathy", "Sympathy", GroupMoreOccasions},
	{"memorial", "In Memoriam", GroupMoreOccasions},
	{"thank_you", "Thank You", GroupMoreOccasions},
	{"congratulations", "Congratulations", GroupMoreOccasions},
	{"promotion", "Promotion", GroupMoreOccasions},
	{"new_job", "New Job", GroupMoreOccasions},
	{"welcome", "Welcome", GroupMoreOccasions},
	{"christmas", "Christmas", GroupMoreOccasions},
	{"valentines", "Valentine's Day", GroupMoreOccasions},
	{"mothers_day", "Mother's Day", GroupMoreOccasions},
	{"fathers_day", "Father's Day", GroupMoreOccasions},
	{"teacher_appreciation", "Teacher Appreciation", GroupMoreOccasions},
	{"bar_mitzvah", "Bar/Bat Mitzvah", GroupMoreOccasions},
	{"other", "Other", GroupMoreOccasions},
}

// Categories returns the occasion list in display order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryGroups returns the categories keyed by group name
func CategoryGroups() map[string][]Category {
	groups := make(map[string][]Category, 2)
	for _, c := range categories {
		groups[c.Group] = append(groups[c.Group], c)
	}
	return groups
}

// IsKnownCategory reports whether value is one of the wizard's occasions.
// Stored events may carry any type; only the wizard enforces this list.
func IsKnownCategory(value string) bool {
	for _, c := range categories {
		if c.Value == value {
			return true
		}
	}
	return false
}
