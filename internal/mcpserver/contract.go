package mcpserver

// NoteKeysContract describes how notes are keyed against the catalogue so LLM
// consumers attach notes to the right member.
const NoteKeysContract = `# docnotes Note Keys

Every note is identified by the pair (class_id, item_id). At most one note exists
per pair; writing to an existing pair replaces its content.

## class_id

The class name exactly as it appears in the catalogue (the ` + "`" + `className` + "`" + ` of a
class record and the ` + "`" + `id` + "`" + ` of its tree leaf), e.g. ` + "`" + `CharacterMovement` + "`" + `.

## item_id

One member of that class:

| Member kind | item_id |
|---|---|
| Property | the property ` + "`" + `name` + "`" + ` |
| Function | the function ` + "`" + `name` + "`" + ` |
| Visual node | the node ` + "`" + `fullTitle` + "`" + ` |

Names are case-sensitive. Use ` + "`" + `get_class` + "`" + ` to see the members of a class before
writing a note.

## Orphans

A note whose pair no longer resolves after the documentation is regenerated is
kept and reported with ` + "`" + `orphan: true` + "`" + `. Move its content to the renamed member with
` + "`" + `set_note` + "`" + ` and remove the old pair with ` + "`" + `delete_note` + "`" + `.

## Content

Plain text, UTF-8. An empty string is a valid note.
`
