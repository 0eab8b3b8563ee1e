// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// ModuleRequires is one entry of a Module attribute's requires table
// (JVMS §4.7.25).
type ModuleRequires struct {
	Index            uint16
	Flags            RequiresFlags
	VersionIndex     uint16 // 0 if absent
}

// ModuleExports is one entry of a Module attribute's exports table.
type ModuleExports struct {
	Index   uint16
	Flags   ExportsFlags
	ToIndex []uint16
}

// ModuleOpens is one entry of a Module attribute's opens table.
type ModuleOpens struct {
	Index   uint16
	Flags   OpensFlags
	ToIndex []uint16
}

// ModuleProvides is one entry of a Module attribute's provides table.
type ModuleProvides struct {
	Index        uint16
	WithIndex    []uint16
}

// ModuleInfo is the payload of a Module attribute (JVMS §4.7.25).
type ModuleInfo struct {
	ModuleNameIndex    uint16
	Flags              ModuleFlags
	ModuleVersionIndex uint16 // 0 if absent

	Requires []ModuleRequires
	Exports  []ModuleExports
	Opens    []ModuleOpens
	Uses     []uint16
	Provides []ModuleProvides
}

func decodeModuleInfo(r *reader) (ModuleInfo, error) {
	var m ModuleInfo
	var err error
	if m.ModuleNameIndex, err = r.readU16(); err != nil {
		return m, err
	}
	flags, err := r.readU16()
	if err != nil {
		return m, err
	}
	m.Flags = ModuleFlags(flags)
	if m.ModuleVersionIndex, err = r.readU16(); err != nil {
		return m, err
	}

	requiresCount, err := r.readU16()
	if err != nil {
		return m, err
	}
	for i := uint16(0); i < requiresCount; i++ {
		idx, err := r.readU16()
		if err != nil {
			return m, err
		}
		flags, err := r.readU16()
		if err != nil {
			return m, err
		}
		verIdx, err := r.readU16()
		if err != nil {
			return m, err
		}
		m.Requires = append(m.Requires, ModuleRequires{Index: idx, Flags: RequiresFlags(flags), VersionIndex: verIdx})
	}

	exportsCount, err := r.readU16()
	if err != nil {
		return m, err
	}
	for i := uint16(0); i < exportsCount; i++ {
		idx, err := r.readU16()
		if err != nil {
			return m, err
		}
		flags, err := r.readU16()
		if err != nil {
			return m, err
		}
		toCount, err := r.readU16()
		if err != nil {
			return m, err
		}
		to := make([]uint16, 0, toCount)
		for j := uint16(0); j < toCount; j++ {
			v, err := r.readU16()
			if err != nil {
				return m, err
			}
			to = append(to, v)
		}
		m.Exports = append(m.Exports, ModuleExports{Index: idx, Flags: ExportsFlags(flags), ToIndex: to})
	}

	opensCount, err := r.readU16()
	if err != nil {
		return m, err
	}
	for i := uint16(0); i < opensCount; i++ {
		idx, err := r.readU16()
		if err != nil {
			return m, err
		}
		flags, err := r.readU16()
		if err != nil {
			return m, err
		}
		toCount, err := r.readU16()
		if err != nil {
			return m, err
		}
		to := make([]uint16, 0, toCount)
		for j := uint16(0); j < toCount; j++ {
			v, err := r.readU16()
			if err != nil {
				return m, err
			}
			to = append(to, v)
		}
		m.Opens = append(m.Opens, ModuleOpens{Index: idx, Flags: OpensFlags(flags), ToIndex: to})
	}

	usesCount, err := r.readU16()
	if err != nil {
		return m, err
	}
	for i := uint16(0); i < usesCount; i++ {
		v, err := r.readU16()
		if err != nil {
			return m, err
		}
		m.Uses = append(m.Uses, v)
	}

	providesCount, err := r.readU16()
	if err != nil {
		return m, err
	}
	for i := uint16(0); i < providesCount; i++ {
		idx, err := r.readU16()
		if err != nil {
			return m, err
		}
		withCount, err := r.readU16()
		if err != nil {
			return m, err
		}
		with := make([]uint16, 0, withCount)
		for j := uint16(0); j < withCount; j++ {
			v, err := r.readU16()
			if err != nil {
				return m, err
			}
			with = append(with, v)
		}
		m.Provides = append(m.Provides, ModuleProvides{Index: idx, WithIndex: with})
	}

	return m, nil
}

func encodeModuleInfo(w *writer, m ModuleInfo) {
	w.writeU16(m.ModuleNameIndex)
	w.writeU16(uint16(m.Flags))
	w.writeU16(m.ModuleVersionIndex)

	w.writeU16(uint16(len(m.Requires)))
	for _, r := range m.Requires {
		w.writeU16(r.Index)
		w.writeU16(uint16(r.Flags))
		w.writeU16(r.VersionIndex)
	}

	w.writeU16(uint16(len(m.Exports)))
	for _, e := range m.Exports {
		w.writeU16(e.Index)
		w.writeU16(uint16(e.Flags))
		w.writeU16(uint16(len(e.ToIndex)))
		for _, t := range e.ToIndex {
			w.writeU16(t)
		}
	}

	w.writeU16(uint16(len(m.Opens)))
	for _, o := range m.Opens {
		w.writeU16(o.Index)
		w.writeU16(uint16(o.Flags))
		w.writeU16(uint16(len(o.ToIndex)))
		for _, t := range o.ToIndex {
			w.writeU16(t)
		}
	}

	w.writeU16(uint16(len(m.Uses)))
	for _, u := range m.Uses {
		w.writeU16(u)
	}

	w.writeU16(uint16(len(m.Provides)))
	for _, p := range m.Provides {
		w.writeU16(p.Index)
		w.writeU16(uint16(len(p.WithIndex)))
		for _, wi := range p.WithIndex {
			w.writeU16(wi)
		}
	}
}
