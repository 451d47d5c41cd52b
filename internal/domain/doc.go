// Package domain models NUFORC (National UFO Reporting Center) sighting
// reports and the rules that turn them into an analysis-ready table.
//
// # Data Source
//
// Reports are published as monthly HTML index pages under
// http://www.nuforc.org/webreports/. The event index (ndxevent.html) links one
// page per month, named ndxeYYYYMM.html. Each row of a month page has seven
// cells (Date / Time, City, State, Shape, Duration, Summary, Posted); the
// scraper appends the page URL as an eighth "Source" field.
//
// # NUFORC Data Conventions
//
// Date/Time:
//
//	"M/D/YY HH:MM", e.g. "4/21/19 21:30". The two-digit year is ambiguous
//	across centuries and is sometimes missing, so the year is taken from the
//	ndxeYYYYMM token of the Source URL instead. See [ParseTimestamp].
//
// Duration:
//
//	Free text: "5 minutes", "~2 hrs", "three seconds", "a while".
//	A magnitude (digits, or a spelled-out number one..fifteen) and a unit
//	(hour/minute/second, loosely spelled) are extracted. Anything else is
//	imputed with the median of the parsed values. See [ParseDurationSeconds].
//
// City:
//
//	Foreign reports carry the country in parentheses: "London (UK/England)".
//	The parenthetical is removed from the city and used as a country hint.
//
// Summary:
//
//	Doubles as an editor's comment field. "((NUFORC Note: ... PD))" marks
//	editorial notes, "hoax" and "MADAR" reports are kept aside, and MUFON
//	referrals are flagged. See [SummaryRules].
//
// Shape:
//
//	Submitter-chosen label from a drop-down that changed over the years;
//	near-duplicates ("Circle", "Sphere", "Round") are merged. See [NormalizeShape].
package domain
