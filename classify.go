package dynstruct

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mfrager/dynamic-struct/internal/common"
)

// Member is one child declaration listed by a classification, carrying the
// name the parent assigns to it. Positional members and wrapper payloads
// have no name.
type Member struct {
	Name        string
	Declaration string
}

// Classification is the shape Classify reads off a single declaration.
// Members are listed, never descended into; recursion belongs to GetSchema.
type Classification struct {
	Kind    Kind
	Signed  bool
	Length  uint32
	Term    string
	Members []Member
}

var (
	reUnsignedInt = regexp.MustCompile(`^u(\d+)$`)
	reSignedInt   = regexp.MustCompile(`^i(\d+)$`)
	reFloat       = regexp.MustCompile(`^f(\d+)$`)
)

// Wrappers stored in the map as plain enum or sequence definitions. The
// generic lookup would misread them as enum or vec, so it is skipped and the
// prefixed form is matched afterwards instead.
var deferredWrappers = [...]string{"HashSet<", "HashMap<", "Option<", "Result<"}

func deferred(decl string) bool {
	for _, p := range deferredWrappers {
		if strings.HasPrefix(decl, p) {
			return true
		}
	}
	return false
}

// Classify resolves one declaration string against defs. Declarations that
// match nothing yield the undefined shape; the only failures are integer and
// float widths outside the supported sets, which panic.
func Classify(decl string, defs DefinitionMap) Classification {
	if !deferred(decl) {
		if def, ok := defs[decl]; ok {
			if c, ok := classifyDefinition(decl, def); ok {
				return c
			}
		}
	}
	switch decl {
	case "bool":
		return Classification{Kind: KindBool}
	case "string":
		return Classification{Kind: KindString}
	}
	if m := reUnsignedInt.FindStringSubmatch(decl); m != nil {
		return Classification{Kind: KindInt, Length: intWidth(m[1], false)}
	}
	if m := reSignedInt.FindStringSubmatch(decl); m != nil {
		return Classification{Kind: KindInt, Signed: true, Length: intWidth(m[1], true)}
	}
	if m := reFloat.FindStringSubmatch(decl); m != nil {
		return Classification{Kind: KindFloat, Length: floatWidth(m[1])}
	}
	return classifyWrapper(decl, defs)
}

func classifyDefinition(decl string, def Definition) (Classification, bool) {
	switch def.Kind {
	case DefStruct:
		switch {
		case len(def.Fields) > 0:
			members := make([]Member, 0, len(def.Fields))
			for _, f := range def.Fields {
				members = append(members, Member{Name: f.Name, Declaration: f.Declaration})
			}
			return Classification{Kind: KindStruct, Term: decl, Members: members}, true
		case len(def.Positional) > 0:
			members := make([]Member, 0, len(def.Positional))
			for _, d := range def.Positional {
				members = append(members, Member{Declaration: d})
			}
			return Classification{Kind: KindVariant, Length: uint32(len(def.Positional)), Members: members}, true
		default:
			return Classification{Kind: KindVariant}, true
		}
	case DefArray:
		return Classification{Kind: KindArray, Length: def.Length, Members: []Member{{Declaration: def.Elements}}}, true
	case DefSequence:
		return Classification{Kind: KindVec, Members: []Member{{Declaration: def.Elements}}}, true
	case DefEnum:
		members := make([]Member, 0, len(def.Variants))
		for _, v := range def.Variants {
			members = append(members, Member{Name: v.Name, Declaration: v.Declaration})
		}
		return Classification{Kind: KindEnum, Term: decl, Length: uint32(len(def.Variants)), Members: members}, true
	}
	// tuple definitions resolve through the wrapper form only
	return Classification{}, false
}

// classifyWrapper matches the generic Wrapper<...> forms. Each one re-resolves
// the exact declaration in the map and requires the matching definition
// shape; anything else falls through to undefined.
func classifyWrapper(decl string, defs DefinitionMap) Classification {
	wrapped := func(prefix string) bool {
		return strings.HasPrefix(decl, prefix) && strings.HasSuffix(decl, ">")
	}
	switch {
	case wrapped("Tuple<"):
		if def, ok := defs[decl]; ok && def.Kind == DefTuple {
			members := make([]Member, 0, len(def.Members))
			for _, d := range def.Members {
				members = append(members, Member{Declaration: d})
			}
			return Classification{Kind: KindTuple, Length: uint32(len(def.Members)), Members: members}
		}
	case wrapped("Array<"):
		if def, ok := defs[decl]; ok && def.Kind == DefArray {
			return Classification{Kind: KindArray, Length: def.Length, Members: []Member{{Declaration: def.Elements}}}
		}
	case wrapped("Vec<"):
		if def, ok := defs[decl]; ok && def.Kind == DefSequence {
			return Classification{Kind: KindVec, Members: []Member{{Declaration: def.Elements}}}
		}
	case wrapped("Option<"):
		if def, ok := defs[decl]; ok && def.Kind == DefEnum && len(def.Variants) >= 2 {
			// the tree records only the payload arm
			return Classification{Kind: KindOption, Members: []Member{{Declaration: def.Variants[1].Declaration}}}
		}
	case wrapped("Result<"):
		if def, ok := defs[decl]; ok && def.Kind == DefEnum && len(def.Variants) >= 2 {
			return Classification{Kind: KindResult, Members: []Member{
				{Declaration: def.Variants[0].Declaration},
				{Declaration: def.Variants[1].Declaration},
			}}
		}
	case wrapped("HashSet<"):
		if def, ok := defs[decl]; ok && def.Kind == DefSequence {
			return Classification{Kind: KindHashSet, Members: []Member{{Declaration: def.Elements}}}
		}
	case wrapped("HashMap<"):
		if def, ok := defs[decl]; ok && def.Kind == DefSequence {
			return Classification{Kind: KindHashMap, Members: []Member{{Declaration: def.Elements}}}
		}
	}
	return Classification{}
}

func intWidth(bits string, signed bool) uint32 {
	n, err := strconv.ParseUint(bits, 10, 32)
	if err == nil {
		if w := uint32(n) / 8; common.ValidIntWidth(w) {
			return w
		}
	}
	if signed {
		panic("invalid signed integer width")
	}
	panic("invalid unsigned integer width")
}

func floatWidth(bits string) uint32 {
	n, err := strconv.ParseUint(bits, 10, 32)
	if err == nil {
		if w := uint32(n) / 8; common.ValidFloatWidth(w) {
			return w
		}
	}
	panic("invalid float width")
}
