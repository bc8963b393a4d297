package build

import "github.com/toyz/registrar/internal/models"

// Accept reports whether c takes part in auto-wiring: the source marks it
// eligible and it does not opt out of metadata scanning.
func Accept(source models.Source, c *models.Component) bool {
	return source.IsEligible(c) && !c.HasTag(models.TagIgnoreMetadata)
}
