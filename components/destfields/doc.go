// Package destfields serves the options and validity of destination fields
// over HTTP so form inputs can search-select values and check them while the
// user types.
//
// Two GET (and HEAD) routes are mounted under the route path:
//
//	{route}/{type}/fields/{fieldID}/options?q=&limit=  -> {"data":[{label,value,isFavorite}]}
//	{route}/{type}/fields/{fieldID}/validate?value=    -> {"valid":bool}
//
// Unknown types or fields yield 404. Options are served only for
// search-selectable fields.
package destfields
