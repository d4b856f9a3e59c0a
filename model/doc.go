// Package model defines the row types shared by the extractors, the
// analyzer and the output writers.
//
// Every extractor produces a [Sheet]: the rows of one worksheet or HTML
// table as [RawRow] values, plus whatever container metadata it could
// recover (sheet name, title, author).
//
//	sheet, err := xlsx.Read(data)
//	width := model.MaxWidth(sheet.Rows)
//
// Cells are plain text. Extractors trim each cell and drop trailing empty
// cells, so rows of one sheet may differ in length; [RawRow.Padded] and
// [MaxWidth] square them up.
//
// # Grids
//
// A [Grid] is a header row followed by data rows, the shape of an analyzed
// table. It renders as Markdown with [Grid.ToMarkdown] or as CSV with
// [Grid.ToCSV].
package model
