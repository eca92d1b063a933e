// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package uhppoted-app-sheetsdb synchronises the rows of a Google Sheets worksheet with a database table.

uhppoted-app-sheetsdb can be used from the command line but is really intended to be run from a cron job. Each
sync pass reads the worksheet, inserts the rows with a blank or '0' status column into the table, updates the
rows with a '2' status (matched on the ID column) and then marks every row written with a '1' status in the
worksheet. The table is created with all TEXT columns from the worksheet header if it does not exist.

uhppoted-app-sheetsdb supports the following commands:

  - sync, to run a sync pass from a worksheet to a PostgreSQL or SQLite table
  - show, to display the contents of the database table as TSV
  - get, to download a worksheet as a TSV file
  - put, to store a TSV file to a worksheet
  - authorise, to authorise application access to Google Sheets
  - version, to display the application version

A local Excel workbook can be used in place of Google Sheets with the --workbook option.
*/
package sheetsdb
