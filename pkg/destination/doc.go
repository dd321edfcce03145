// Package destination models the server-defined destination types (phone
// number, email, webhook, chat channel, ...) that a destination form can
// target. A Registry holds the catalog fetched from the server and is the
// only place a runtime type string is resolved: every form operation looks its
// type up first and treats an unknown type as an input error. Build assembles
// the wire payload (Input) in the declaration order of the type's required
// fields, InputSchema exports that payload contract as an OpenAPI schema, and
// Parse/LoadFile read registry fixtures in JSON or YAML.
package destination
