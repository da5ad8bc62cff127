// Package pdx reads the declarative script format of Clausewitz-engine games
// (Stellaris, Europa Universalis, Hearts of Iron and friends).
//
// The work is split across sub-packages:
//
//   - lexer: comment stripping and tokenization
//   - parser: recursive-descent parsing into value trees
//   - ast: the Value tagged union and its JSON/YAML encoding
//   - errors: diagnostics for recovered lexical and structural problems
//
// Most callers only need this package:
//
//	doc, err := pdx.ParseFile("common/governments/civics/00_civics.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, entry := range doc.Entries() {
//	    fmt.Println(entry.Key)
//	}
package pdx
