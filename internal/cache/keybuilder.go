package cache

import (
	"fmt"

	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// Ensure KeyBuilderImpl implements interfaces.KeyBuilder
var _ interfaces.KeyBuilder = (*KeyBuilderImpl)(nil)

// maxScopeIDLength bounds a single identifier; Classroom and Drive ids are far shorter
const maxScopeIDLength = 128

// scopeArity is the number of scope identifiers each kind is addressed by
var scopeArity = map[models.Kind]int{
	models.KindCourses:       0,
	models.KindCourse:        1,
	models.KindAnnouncements: 1,
	models.KindAssignments:   1,
	models.KindSubmissions:   2,
	models.KindMaterials:     1,
	models.KindTopics:        1,
	models.KindFileContent:   1,
}

// KeyBuilderImpl implements the KeyBuilder interface
type KeyBuilderImpl struct{}

// NewKeyBuilder creates a new KeyBuilder instance
func NewKeyBuilder() interfaces.KeyBuilder {
	return &KeyBuilderImpl{}
}

// Build validates the scope identifiers for kind and returns the cache key.
// Errors wrap models.ErrInvalidInput.
func (kb *KeyBuilderImpl) Build(kind models.Kind, scope ...string) (models.Key, error) {
	arity, ok := scopeArity[kind]
	if !ok {
		return models.Key{}, fmt.Errorf("%w: unknown entity kind %q", models.ErrInvalidInput, kind)
	}

	if len(scope) != arity {
		return models.Key{}, fmt.Errorf("%w: %s expects %d identifier(s), got %d",
			models.ErrInvalidInput, kind, arity, len(scope))
	}

	for i, id := range scope {
		if err := validateScopeID(id); err != nil {
			return models.Key{}, fmt.Errorf("%w: %s identifier %d: %v", models.ErrInvalidInput, kind, i, err)
		}
	}

	key := models.Key{Kind: kind}
	if arity > 0 {
		key.Scope = append([]string(nil), scope...)
	}
	return key, nil
}

// validateScopeID accepts the id alphabet used by Classroom and Drive
func validateScopeID(id string) error {
	if id == "" {
		return fmt.Errorf("cannot be empty")
	}
	if len(id) > maxScopeIDLength {
		return fmt.Errorf("longer than %d characters", maxScopeIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("contains invalid character %q", r)
		}
	}
	return nil
}
