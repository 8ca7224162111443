package geosynth

import "sort"

// Resolve expands the requested identifiers into the minimal set of
// archives to fetch for the given variant.
//
// Identifiers may be data type names, or the group aliases "all" and
// "non-hdr". An empty request defaults to "non-hdr". Unknown
// identifiers fail with ErrInvalidRequest. The result is de-duplicated
// by archive name (several data types may share one archive) and
// sorted by name, so the same request set always yields the same
// archive set regardless of input ordering.
func Resolve(requested []string, variant Variant) ([]Archive, error) {
	variant, err := ParseVariant(string(variant))
	if err != nil {
		return nil, err
	}

	dtypes, err := expandIdentifiers(requested)
	if err != nil {
		return nil, err
	}

	byName := make(map[string][]DataType)
	for _, dt := range dtypes {
		name := dt.ArchiveName()
		byName[name] = append(byName[name], dt)
	}

	archives := make([]Archive, 0, len(byName))
	for name, members := range byName {
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		archives = append(archives, Archive{
			Name:      name,
			Variant:   variant,
			DataTypes: members,
		})
	}
	sort.Slice(archives, func(i, j int) bool { return archives[i].Name < archives[j].Name })

	return archives, nil
}

// expandIdentifiers resolves group aliases and validates data type
// names, de-duplicating repeated identifiers.
func expandIdentifiers(requested []string) ([]DataType, error) {
	if len(requested) == 0 {
		return NonHDRDataTypes(), nil
	}

	seen := make(map[DataType]struct{})
	add := func(dts ...DataType) {
		for _, dt := range dts {
			seen[dt] = struct{}{}
		}
	}

	for _, id := range requested {
		switch id {
		case GroupAll:
			add(AllDataTypes()...)
		case GroupNonHDR:
			add(NonHDRDataTypes()...)
		default:
			dt, err := ParseDataType(id)
			if err != nil {
				return nil, err
			}
			add(dt)
		}
	}

	out := make([]DataType, 0, len(seen))
	for dt := range seen {
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
