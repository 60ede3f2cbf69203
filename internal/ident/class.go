// Package ident parses and formats platform object identifiers.
//
// Every platform object is named by a class prefix and an opaque local id
// joined with a dash, e.g. "file-BQbXKk80fPFj4Jbfpxb6Ffv2". Data objects
// may additionally be scoped to a project: "project-xxxx:file-yyyy".
package ident

// ObjectClass is the closed set of object kinds the platform stores.
type ObjectClass string

const (
	ClassAnalysis  ObjectClass = "analysis"
	ClassJob       ObjectClass = "job"
	ClassFile      ObjectClass = "file"
	ClassApp       ObjectClass = "app"
	ClassApplet    ObjectClass = "applet"
	ClassDatabase  ObjectClass = "database"
	ClassRecord    ObjectClass = "record"
	ClassProject   ObjectClass = "project"
	ClassContainer ObjectClass = "container"
)

// Classes lists every known class in a fixed order.
var Classes = []ObjectClass{
	ClassAnalysis,
	ClassJob,
	ClassFile,
	ClassApp,
	ClassApplet,
	ClassDatabase,
	ClassRecord,
	ClassProject,
	ClassContainer,
}

// ClassFromPrefix maps an identifier prefix to its class. The match is
// exact and case-sensitive.
func ClassFromPrefix(prefix string) (ObjectClass, bool) {
	for _, c := range Classes {
		if string(c) == prefix {
			return c, true
		}
	}
	return "", false
}

// String returns the class prefix.
func (c ObjectClass) String() string {
	return string(c)
}

// IsDataObject reports whether objects of this class live inside a project
// and may be addressed with a project scope.
func (c ObjectClass) IsDataObject() bool {
	switch c {
	case ClassFile, ClassRecord, ClassDatabase, ClassApplet:
		return true
	}
	return false
}
