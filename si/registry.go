package si

import "fmt"

// DescriptorRegistration binds an identity to a concrete descriptor
// factory. The XML element name is taken from a fresh instance.
type DescriptorRegistration struct {
	ID  EDID
	New func() Descriptor
}

// TableRegistration binds one or more table ids to a concrete table
// factory (some types answer to several ids, e.g. actual/other variants).
type TableRegistration struct {
	IDs []uint8
	New func() Table
}

// Registry resolves raw tag values to concrete structure types and XML
// element names to factories. It is built once, before any decoding, and
// never mutated afterwards; a built Registry is safe to share across
// goroutines. Registering the same identity or XML name twice is a
// programming error and panics at build time.
type Registry struct {
	descs      map[EDID]DescriptorRegistration
	descNames  map[string]DescriptorRegistration
	tables     map[uint8]TableRegistration
	tableNames map[string]TableRegistration
}

// RegistryOption populates a Registry under construction.
type RegistryOption func(*Registry)

// WithDescriptors registers descriptor types.
func WithDescriptors(regs ...DescriptorRegistration) RegistryOption {
	return func(r *Registry) {
		for _, reg := range regs {
			if _, dup := r.descs[reg.ID]; dup {
				panic(fmt.Sprintf("si: duplicate descriptor registration for %s", reg.ID))
			}
			r.descs[reg.ID] = reg
			name := reg.New().XMLName()
			if prev, dup := r.descNames[name]; dup {
				// Actual/other style aliases may share a type; only a
				// different type claiming the same name is a collision.
				if prev.ID != reg.ID {
					panic(fmt.Sprintf("si: duplicate descriptor XML name %q", name))
				}
			}
			r.descNames[name] = reg
		}
	}
}

// WithTables registers table types.
func WithTables(regs ...TableRegistration) RegistryOption {
	return func(r *Registry) {
		for _, reg := range regs {
			for _, id := range reg.IDs {
				if _, dup := r.tables[id]; dup {
					panic(fmt.Sprintf("si: duplicate table registration for id 0x%02X", id))
				}
				r.tables[id] = reg
			}
			name := reg.New().XMLName()
			if _, dup := r.tableNames[name]; dup {
				panic(fmt.Sprintf("si: duplicate table XML name %q", name))
			}
			r.tableNames[name] = reg
		}
	}
}

// NewRegistry builds an immutable registry from the given registrations.
// Call it once at program start, before any decode or encode.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		descs:      make(map[EDID]DescriptorRegistration),
		descNames:  make(map[string]DescriptorRegistration),
		tables:     make(map[uint8]TableRegistration),
		tableNames: make(map[string]TableRegistration),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveDescriptor maps a raw descriptor tag to its registration, most
// specific scope first: table-scoped, then the extension namespace when
// the tag is the extension sentinel, then the private data space in
// effect, then the standard namespace. A miss is not an error; callers
// fall back to RawDescriptor.
func (r *Registry) ResolveDescriptor(tableID uint8, pds uint32, tag, extTag uint8) (DescriptorRegistration, bool) {
	if reg, ok := r.descs[TableEDID(tableID, tag)]; ok {
		return reg, true
	}
	if tag == DescriptorTagExtension {
		if reg, ok := r.descs[ExtensionEDID(extTag)]; ok {
			return reg, true
		}
	}
	if pds != 0 {
		if reg, ok := r.descs[PrivateEDID(pds, tag)]; ok {
			return reg, true
		}
	}
	reg, ok := r.descs[StandardEDID(tag)]
	return reg, ok
}

// DescriptorByName returns the registration for an XML element name.
func (r *Registry) DescriptorByName(name string) (DescriptorRegistration, bool) {
	reg, ok := r.descNames[name]
	return reg, ok
}

// TableByID returns the registration for a table id.
func (r *Registry) TableByID(id uint8) (TableRegistration, bool) {
	reg, ok := r.tables[id]
	return reg, ok
}

// TableByName returns the registration for an XML element name.
func (r *Registry) TableByName(name string) (TableRegistration, bool) {
	reg, ok := r.tableNames[name]
	return reg, ok
}
