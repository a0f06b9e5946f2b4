// Package sheet encodes projects into styled spreadsheet workbooks and
// decodes workbooks back into mapping rows.
//
// Two layouts are written. The project layout has one metadata sheet
// ("01_Allgemein") and one sheet per round named after the round id with
// the four-column header Source, Destination, Status, Comment on row 1.
// It is the layout Decode reads back. The analysis layout
// ("Runde_<id>" sheets) carries a banner, a round metadata block and the
// six-column header Nr., Destination Feld, EDI Team Kommentar, Source Feld,
// TMS-IT Kommentar, Allgemeine Kommentare with sequential numbering.
//
// In both layouts rows whose free-text fields are all blank are left out,
// the table header is frozen and carries a filter, and no formulas, merged
// cells or data validations are written.
//
// Decode treats the first row of every sheet as the header and matches it
// case-insensitively against short synonym lists per column. Missing
// columns decode as empty strings. Sheets without kept rows are omitted.
package sheet
