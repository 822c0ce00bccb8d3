package core

import (
	mus "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the types that end up in the
// persisted index bundle. The field order here is the wire format;
// changing it breaks compatibility with existing index files.
var (
	IDMUS      = idSer{}
	VectorMUS  = ord.NewSliceSer[float32](raw.Float32)
	StringsMUS = ord.NewSliceSer[string](ord.String)
	DutyRefMUS = dutyRefSer{}
	EntityMUS  = entitySer{}
)

var (
	_ mus.Serializer[ID]      = IDMUS
	_ mus.Serializer[DutyRef] = DutyRefMUS
	_ mus.Serializer[Entity]  = EntityMUS
)

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type dutyRefSer struct{}

func (dutyRefSer) Marshal(r DutyRef, bs []byte) (n int) {
	n = varint.Int.Marshal(r.Entity, bs)
	n += varint.Int.Marshal(r.Position, bs[n:])
	return n
}

func (dutyRefSer) Unmarshal(bs []byte) (r DutyRef, n int, err error) {
	r.Entity, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return r, n, err
	}
	var n1 int
	r.Position, n1, err = varint.Int.Unmarshal(bs[n:])
	return r, n + n1, err
}

func (dutyRefSer) Size(r DutyRef) int {
	return varint.Int.Size(r.Entity) + varint.Int.Size(r.Position)
}

func (s dutyRefSer) Skip(bs []byte) (n int, err error) {
	n, err = varint.Int.Skip(bs)
	if err != nil {
		return n, err
	}
	n1, err := varint.Int.Skip(bs[n:])
	return n + n1, err
}

type entitySer struct{}

func (entitySer) Marshal(e Entity, bs []byte) (n int) {
	n = ord.String.Marshal(e.Code, bs)
	n += ord.String.Marshal(e.Title, bs[n:])
	n += ord.String.Marshal(e.Description, bs[n:])
	n += StringsMUS.Marshal(e.Duties, bs[n:])
	n += StringsMUS.Marshal(e.ExampleTitles, bs[n:])
	n += ord.String.Marshal(e.Requirements, bs[n:])
	n += ord.String.Marshal(e.AdditionalInfo, bs[n:])
	n += StringsMUS.Marshal(e.Exclusions, bs[n:])
	n += ord.String.Marshal(e.BroadCategory, bs[n:])
	n += ord.String.Marshal(e.MajorGroup, bs[n:])
	n += ord.String.Marshal(e.ReferenceURL, bs[n:])
	return n
}

func (entitySer) Unmarshal(bs []byte) (e Entity, n int, err error) {
	var n1 int
	if e.Code, n, err = ord.String.Unmarshal(bs); err != nil {
		return e, n, err
	}
	if e.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Description, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Duties, n1, err = StringsMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.ExampleTitles, n1, err = StringsMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Requirements, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.AdditionalInfo, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Exclusions, n1, err = StringsMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.BroadCategory, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.MajorGroup, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	e.ReferenceURL, n1, err = ord.String.Unmarshal(bs[n:])
	return e, n + n1, err
}

func (entitySer) Size(e Entity) int {
	return ord.String.Size(e.Code) +
		ord.String.Size(e.Title) +
		ord.String.Size(e.Description) +
		StringsMUS.Size(e.Duties) +
		StringsMUS.Size(e.ExampleTitles) +
		ord.String.Size(e.Requirements) +
		ord.String.Size(e.AdditionalInfo) +
		StringsMUS.Size(e.Exclusions) +
		ord.String.Size(e.BroadCategory) +
		ord.String.Size(e.MajorGroup) +
		ord.String.Size(e.ReferenceURL)
}

func (entitySer) Skip(bs []byte) (n int, err error) {
	skips := []func([]byte) (int, error){
		ord.String.Skip, ord.String.Skip, ord.String.Skip,
		StringsMUS.Skip, StringsMUS.Skip,
		ord.String.Skip, ord.String.Skip,
		StringsMUS.Skip,
		ord.String.Skip, ord.String.Skip, ord.String.Skip,
	}
	for _, skip := range skips {
		n1, err := skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
