package mcpserver

// NoteFileContract describes the flat-file format Laguz uses to
// persist notes, for LLM consumers that read the notebook directly.
const NoteFileContract = `# Laguz Note File Format

Laguz persists each note as one UTF-8 text file in a flat notebook
directory. The file name is the note's UUID plus the ` + "`.txt`" + ` extension,
e.g. ` + "`6f1c9d2e-8a41-4b7e-9c3d-1f2a3b4c5d6e.txt`" + `.

## Current format

` + "```" + `
folder:<folder name>
rtf:<base64-encoded rich text payload, or empty>
---
<raw note body>
` + "```" + `

Rules:

1. The header is exactly two lines, followed by the separator line
   ` + "`---`" + ` surrounded by newlines, followed by the raw body.
2. The ` + "`folder:`" + ` value is the display folder. A blank value means the
   default folder ("General").
3. The ` + "`rtf:`" + ` value, when present, is the standard-base64 encoding of
   an opaque rich-text payload. The body is always the plain-text
   projection of that payload.
4. The body is not escaped. The first line of the body is the note's
   display title; it is never stored separately.
5. The folder list lives in ` + "`folders.txt`" + `, one name per line; blank
   lines are ignored.

## Older files

Readers must also accept two historical layouts:

- A header of ` + "`title:`" + `, ` + "`createdAt:`" + ` and ` + "`updatedAt:`" + ` lines before
  the separator. The header is discarded; only the body counts.
- A bare file with no separator at all. The whole file is the body.

Anything that matches none of the above is treated as a bare body.
Decoding never fails.
`
