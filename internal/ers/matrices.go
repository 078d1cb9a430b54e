package ers

import "github.com/resonate/resonate-backend/internal/domain"

// styleMatrix is the fixed 5x5 communication-compatibility lookup (spec
// GLOSSARY "Style compatibility matrix"). The table defines (a,b) and (b,a)
// identically, so the single [a][b] lookup in styleCompatibility is symmetric.
var styleMatrix = map[domain.Style]map[domain.Style]float64{
	domain.StyleExpressive: {
		domain.StyleExpressive: 0.8, domain.StylePrecise: 0.5, domain.StylePoetic: 0.9,
		domain.StyleMinimal: 0.4, domain.StyleWitty: 0.85,
	},
	domain.StylePrecise: {
		domain.StyleExpressive: 0.5, domain.StylePrecise: 0.9, domain.StylePoetic: 0.45,
		domain.StyleMinimal: 0.7, domain.StyleWitty: 0.6,
	},
	domain.StylePoetic: {
		domain.StyleExpressive: 0.9, domain.StylePrecise: 0.45, domain.StylePoetic: 0.85,
		domain.StyleMinimal: 0.35, domain.StyleWitty: 0.6,
	},
	domain.StyleMinimal: {
		domain.StyleExpressive: 0.4, domain.StylePrecise: 0.7, domain.StylePoetic: 0.35,
		domain.StyleMinimal: 0.75, domain.StyleWitty: 0.45,
	},
	domain.StyleWitty: {
		domain.StyleExpressive: 0.85, domain.StylePrecise: 0.6, domain.StylePoetic: 0.6,
		domain.StyleMinimal: 0.45, domain.StyleWitty: 0.9,
	},
}

// archetypeMatrix is the fixed 5x5 archetype-affinity lookup (spec GLOSSARY
// "archetype affinity matrix").
var archetypeMatrix = map[domain.Archetype]map[domain.Archetype]float64{
	domain.ArchetypeSpark: {
		domain.ArchetypeSpark: 0.8, domain.ArchetypeAnchor: 0.6, domain.ArchetypeWave: 0.75,
		domain.ArchetypeEmber: 0.85, domain.ArchetypeStorm: 0.7,
	},
	domain.ArchetypeAnchor: {
		domain.ArchetypeSpark: 0.6, domain.ArchetypeAnchor: 0.85, domain.ArchetypeWave: 0.8,
		domain.ArchetypeEmber: 0.7, domain.ArchetypeStorm: 0.4,
	},
	domain.ArchetypeWave: {
		domain.ArchetypeSpark: 0.75, domain.ArchetypeAnchor: 0.8, domain.ArchetypeWave: 0.85,
		domain.ArchetypeEmber: 0.75, domain.ArchetypeStorm: 0.55,
	},
	domain.ArchetypeEmber: {
		domain.ArchetypeSpark: 0.85, domain.ArchetypeAnchor: 0.7, domain.ArchetypeWave: 0.75,
		domain.ArchetypeEmber: 0.8, domain.ArchetypeStorm: 0.65,
	},
	domain.ArchetypeStorm: {
		domain.ArchetypeSpark: 0.7, domain.ArchetypeAnchor: 0.4, domain.ArchetypeWave: 0.55,
		domain.ArchetypeEmber: 0.65, domain.ArchetypeStorm: 0.8,
	},
}

const missingLookupDefault = 0.5

func styleCompatibility(a, b *domain.Style) float64 {
	if a == nil || b == nil {
		return missingLookupDefault
	}
	row, ok := styleMatrix[*a]
	if !ok {
		return missingLookupDefault
	}
	v, ok := row[*b]
	if !ok {
		return missingLookupDefault
	}
	return v
}

func archetypeAffinity(a, b *domain.Archetype) float64 {
	if a == nil || b == nil {
		return missingLookupDefault
	}
	row, ok := archetypeMatrix[*a]
	if !ok {
		return missingLookupDefault
	}
	v, ok := row[*b]
	if !ok {
		return missingLookupDefault
	}
	return v
}
