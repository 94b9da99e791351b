package types

import (
	"go/token"
	goTypes "go/types"

	"golang.org/x/exp/slices"
)

// LoadedType describes a type declared by a compiled package. It is a handle which allows callers to inspect the
// compiled type: its method set, its fields and where it was declared.
type LoadedType struct {
	// Name describes the unqualified type name.
	Name string

	// QualifiedName describes the type name qualified by its package path.
	QualifiedName string

	// Object describes the type-checked type name object.
	Object *goTypes.TypeName

	// Position describes where the type was declared.
	Position token.Position
}

// NewLoadedType creates a LoadedType for the given type name object.
func NewLoadedType(qualifiedName string, object *goTypes.TypeName, fileSet *token.FileSet) *LoadedType {
	loadedType := &LoadedType{
		Name:          object.Name(),
		QualifiedName: qualifiedName,
		Object:        object,
	}
	if fileSet != nil && object.Pos().IsValid() {
		loadedType.Position = fileSet.Position(object.Pos())
	}
	return loadedType
}

// Type returns the declared type.
func (t *LoadedType) Type() goTypes.Type {
	return t.Object.Type()
}

// IsStruct indicates whether the type's underlying type is a struct.
func (t *LoadedType) IsStruct() bool {
	_, ok := t.Type().Underlying().(*goTypes.Struct)
	return ok
}

// Methods returns the sorted names of every method callable on a pointer to the type.
func (t *LoadedType) Methods() []string {
	methodSet := goTypes.NewMethodSet(goTypes.NewPointer(t.Type()))
	names := make([]string, 0, methodSet.Len())
	for i := 0; i < methodSet.Len(); i++ {
		names = append(names, methodSet.At(i).Obj().Name())
	}
	slices.Sort(names)
	return names
}

// HasMethod indicates whether a method with the given name is callable on a pointer to the type.
func (t *LoadedType) HasMethod(name string) bool {
	_, found := slices.BinarySearch(t.Methods(), name)
	return found
}

// Fields returns the names of the type's struct fields in declaration order, or nil if it is not a struct.
func (t *LoadedType) Fields() []string {
	structType, ok := t.Type().Underlying().(*goTypes.Struct)
	if !ok {
		return nil
	}
	fields := make([]string, structType.NumFields())
	for i := range fields {
		fields[i] = structType.Field(i).Name()
	}
	return fields
}

// String returns the qualified name of the type.
func (t *LoadedType) String() string {
	return t.QualifiedName
}
