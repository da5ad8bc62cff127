/*
Package parser builds value trees from Paradox-style script text.

# Grammar

Inside a block the parser collects keyed entries and bare items separately:

	name = value        assignment (repeated names coalesce into a list)
	name { ... }        assignment with the "=" omitted
	name > operand      comparison, stored as a list item
	name                bare item
	{ ... }             anonymous block, stored as a list item

When the block closes, it becomes a list if nothing was assigned, or a mapping
otherwise; a mapping keeps its bare items under the "items" key. At the top
level of a document bare names are flags and take the value yes.

Right-hand sides are blocks, quoted strings, numbers, yes/no booleans, words,
or a lone comparator.

# Error Handling

The format is hand-written by modders and game developers, so the parser never
rejects input. Unbalanced braces, a dangling "=" or an unterminated string are
recovered from and reported as diagnostics on the Result:

	p := parser.NewParser()
	result, err := p.Parse("common/governments/civics/00_civics.txt")
	if err != nil {
	    return err // I/O only
	}
	for _, d := range result.Diagnostics.Errors {
	    log.Println(d)
	}

Only I/O problems (missing file, file over the size limit, undecodable bytes)
are returned as errors.
*/
package parser
