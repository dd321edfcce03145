// Package graphql is the client for the destination API. It fetches the type
// catalog, validates single field values, renders display info, searches the
// options of search-selectable fields and runs submit mutations. Responses
// carrying an errors array surface as errutil.Errors so forms can attribute
// them; network and protocol failures surface as *TransportError.
package graphql
