// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	CompilerNotFoundId Id = iota + 1
	CompilerLaunchFailedId
	InvalidOptionId
	CompilationFailedId
	SourceNotFoundId
	OutputWriteFailedId
	ConfigLoadFailedId
)

const (
	mpyFilesDocLink HttpLink = "https://docs.micropython.org/en/latest/reference/mpyfiles.html"
	mpyCrossDocLink HttpLink = "https://github.com/micropython/micropython/tree/master/mpy-cross"
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink  // documentation pages for this failure class
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue page as terminal Markdown. stylePath is a glamour
// style name ("auto", "dark", "light", ...) or the path of a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	compilerNotFoundIssue = &Issue{
		id: CompilerNotFoundId,
		mdMsg: `
# mpy-cross binary not found!

The compiler binary is expected next to the mpycross executable. It is never
looked up on your PATH, so a system-wide mpy-cross is not picked up.

## Things you can try:
- Reinstall mpycross from a release archive that bundles mpy-cross
- Point the configuration at an explicit binary:
~~~cue
compiler: {
	binary_path: "/opt/micropython/mpy-cross/build/mpy-cross"
}
~~~
- Or pass it for a single run:
~~~
$ mpycross --binary /path/to/mpy-cross version
~~~`,
		docLinks: []HttpLink{mpyCrossDocLink},
	}

	compilerLaunchFailedIssue = &Issue{
		id: CompilerLaunchFailedId,
		mdMsg: `
# mpy-cross could not be started!

The binary exists but the operating system refused to run it.

## Common causes:
- The file lost its executable bit (common after unpacking a zip archive)
- The binary was built for another CPU architecture or operating system
- The run was canceled or hit its deadline

## Things you can try:
~~~
$ chmod +x "$(dirname "$(command -v mpycross)")/mpy-cross"
$ file "$(dirname "$(command -v mpycross)")/mpy-cross"
~~~`,
		docLinks: []HttpLink{mpyCrossDocLink},
	}

	invalidOptionIssue = &Issue{
		id: InvalidOptionId,
		mdMsg: `
# Invalid compiler option!

An option was rejected before mpy-cross was started.

## Accepted values:
- **optimization level**: 0, 1, 2 or 3
- **arch**: x86, x64, armv6, armv7m, armv7em, armv7emsp, armv7emdp, xtensa, xtensawin
- **emit**: bytecode, native, viper

Other numeric options (small int bits, heap size) are passed through and
checked by mpy-cross itself.`,
		docLinks: []HttpLink{mpyFilesDocLink},
	}

	compilationFailedIssue = &Issue{
		id: CompilationFailedId,
		mdMsg: `
# Compilation failed!

mpy-cross rejected the source. Its own diagnostic is printed above unchanged.

## Things you can try:
- Check the reported file and line for syntax errors
- Make sure the source targets MicroPython, not a newer CPython feature
- Run the compiler directly to see its full output:
~~~
$ mpycross run -- -v main.py
~~~`,
		docLinks: []HttpLink{mpyFilesDocLink},
	}

	sourceNotFoundIssue = &Issue{
		id: SourceNotFoundId,
		mdMsg: `
# Source file not found!

One of the files given to 'mpycross compile' could not be read.

## Things you can try:
- Check the path for typos
- Use '-' to read the source from standard input:
~~~
$ cat main.py | mpycross compile --name main.py -
~~~`,
	}

	outputWriteFailedIssue = &Issue{
		id: OutputWriteFailedId,
		mdMsg: `
# Failed to write the compiled .mpy file!

The source compiled, but the artifact could not be saved.

## Things you can try:
- Check that the output directory exists and is writable
- Pick another directory with '--out-dir'`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file exists but could not be parsed or validated.

## Things you can try:
- Show the configuration path:
~~~
$ mpycross config path
~~~
- Regenerate a default file and compare:
~~~
$ mpycross config dump
~~~

## Example configuration:
~~~cue
compiler: {
	workers: 4
}
defaults: {
	optimization_level: 2
	arch: "armv7emsp"
}
ui: {
	verbose: false
}
~~~`,
	}

	issues = map[Id]*Issue{
		compilerNotFoundIssue.Id():     compilerNotFoundIssue,
		compilerLaunchFailedIssue.Id(): compilerLaunchFailedIssue,
		invalidOptionIssue.Id():        invalidOptionIssue,
		compilationFailedIssue.Id():    compilationFailedIssue,
		sourceNotFoundIssue.Id():       sourceNotFoundIssue,
		outputWriteFailedIssue.Id():    outputWriteFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
