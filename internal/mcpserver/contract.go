package mcpserver

// DocumentFormatContract describes the canonical day document format
// that LLM consumers must follow when composing input for sync_day.
const DocumentFormatContract = `# Dagaz Day Document Format Contract

A day document is the full editable state of one calendar day. Syncing a
document REPLACES that day: notes you leave out are deleted.

## Structure

` + "```" + `markdown
# Day: 2025-10-12

 - [ ] :12: buy milk
 - [x] :13: call dentist
 - [ ] :new note without an id

Free-form text for the day goes here.
Multiple lines are fine.
---
` + "```" + `

## Rules

1. **The header is mandatory** and must be the first non-blank line:
   ` + "`" + `# Day: YYYY-MM-DD` + "`" + ` or ` + "`" + `# Today: YYYY-MM-DD` + "`" + ` (the two spellings are
   equivalent).
2. **Note lines** start with ` + "`" + ` - [ ] :` + "`" + ` (open) or ` + "`" + ` - [x] :` + "`" + ` (done),
   exactly that spelling, lowercase x.
3. **Existing notes** carry their id between colons: ` + "`" + ` - [ ] :12: body` + "`" + `.
   Keep the id to update a note; change the marker to toggle completion;
   edit the text after the second colon to rewrite the body.
4. **New notes** have no id: ` + "`" + ` - [ ] :pick up keys` + "`" + `. One will be
   assigned on sync.
5. **Deleting** a note means omitting its line from the document.
6. **An empty slot** ` + "`" + ` - [ ] :` + "`" + ` is ignored; it exists for editing
   convenience.
7. **Free text**: any line that is not a header, note line, or ` + "`" + `---` + "`" + ` is
   kept as the day's free text.
8. **Terminator**: end each day block with ` + "`" + `---` + "`" + ` on its own line.
   Several day blocks may be concatenated in one buffer.
9. **Any malformed note line rejects the whole document** and nothing is
   written.
`
