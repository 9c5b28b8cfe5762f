/*
Package qname parses the capability references users type.

Accepted forms:

	Write              bare name, may be ambiguous
	io::Write          module-qualified
	io.Write           module-qualified, dotted
	std::io::Write     crate-qualified; the std prefix is dropped

Segments may hold any characters except whitespace, so slugs such as
my-mod::Add<Rhs> parse too. A name containing "::" or "." can only be reached
through Exact, which takes the name verbatim.

Parsing is purely syntactic. Whether the reference names anything is decided
by the catalog, which matches names exactly.
*/
package qname
