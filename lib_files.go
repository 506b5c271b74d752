package clay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// openFile is one tfopen handle
type openFile struct {
	path   string
	mode   string
	f      *os.File
	reader *bufio.Reader
	writer *bufio.Writer
}

// fileTable maps tfopen handles to files. Handles 0-2 are tfin, tfout and tferr.
type fileTable struct {
	next  int
	files map[int]*openFile
}

func newFileTable() *fileTable {
	return &fileTable{next: 3, files: make(map[int]*openFile)}
}

func (t *fileTable) open(path, mode string) (int, error) {
	var (
		f   *os.File
		err error
	)
	switch mode {
	case "r":
		f, err = os.Open(path)
	case "w":
		f, err = os.Create(path)
	case "a":
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	default:
		return -1, evalErrorf("tfopen: mode must be r, w or a, not %q", mode)
	}
	if err != nil {
		return -1, err
	}
	of := &openFile{path: path, mode: mode, f: f}
	if mode == "r" {
		of.reader = bufio.NewReader(f)
	} else {
		of.writer = bufio.NewWriter(f)
	}
	fd := t.next
	t.next++
	t.files[fd] = of
	return fd, nil
}

func (t *fileTable) get(fd int64) (*openFile, error) {
	of, found := t.files[int(fd)]
	if !found {
		return nil, evalErrorf("bad file handle %d", fd)
	}
	return of, nil
}

func (t *fileTable) close(fd int64) error {
	of, err := t.get(fd)
	if err != nil {
		return err
	}
	delete(t.files, int(fd))
	if of.writer != nil {
		if err := of.writer.Flush(); err != nil {
			of.f.Close()
			return err
		}
	}
	return of.f.Close()
}

// closeAll flushes and closes every handle, returning the failures
func (t *fileTable) closeAll() []error {
	var errs []error
	for fd, of := range t.files {
		if err := t.close(int64(fd)); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", of.path, err))
		}
	}
	return errs
}

// readLine returns the next line without its terminator; io.EOF at the end
func (of *openFile) readLine() (string, error) {
	line, err := of.reader.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func buildFileLib() {
	builtins["tfopen"] = builtin{1, 2, "tfopen(path[, mode])", func(e *Engine, args []Value) (Value, error) {
		mode := "r"
		if len(args) == 2 {
			mode = args[1].String()
		}
		path := e.resolvePath(args[0].String())
		fd, err := e.files.open(path, mode)
		if err != nil {
			var scriptErr *ScriptError
			if errors.As(err, &scriptErr) {
				return Value{}, err
			}
			e.logger.DebugCat(CatIO, "tfopen %s: %v", path, err)
			return Int(-1), nil
		}
		e.logger.DebugCat(CatIO, "tfopen %s (%s) = %d", path, mode, fd)
		return Int(int64(fd)), nil
	}}

	builtins["tfclose"] = builtin{1, 1, "tfclose(fd)", func(e *Engine, args []Value) (Value, error) {
		if err := e.files.close(args[0].ToInt()); err != nil {
			var scriptErr *ScriptError
			if errors.As(err, &scriptErr) {
				return Value{}, err
			}
			return Value{}, ioError("tfclose", err)
		}
		return Int(0), nil
	}}

	// tfread(fd) returns the next line; tfread(fd, "var") stores it and
	// returns its length, or -1 at end of file
	builtins["tfread"] = builtin{1, 2, "tfread(fd[, var])", func(e *Engine, args []Value) (Value, error) {
		of, err := e.files.get(args[0].ToInt())
		if err != nil {
			return Value{}, err
		}
		if of.reader == nil {
			return Value{}, evalErrorf("tfread: handle %s is not open for reading", args[0])
		}
		line, err := of.readLine()
		if err == io.EOF {
			if len(args) == 2 {
				return Int(-1), nil
			}
			return Str(""), nil
		}
		if err != nil {
			return Value{}, ioError("tfread", err)
		}
		if len(args) == 2 {
			e.setVar(args[1].String(), Str(line))
			return Int(int64(len([]rune(line)))), nil
		}
		return Str(line), nil
	}}

	builtins["tfwrite"] = builtin{2, 2, "tfwrite(fd, text)", func(e *Engine, args []Value) (Value, error) {
		fd := args[0].ToInt()
		text := args[1].String()
		switch fd {
		case 1:
			e.enqueueOutput(text, Attributes{})
			return Int(1), nil
		case 2:
			e.enqueueError(text)
			return Int(1), nil
		}
		of, err := e.files.get(fd)
		if err != nil {
			return Value{}, err
		}
		if of.writer == nil {
			return Value{}, evalErrorf("tfwrite: handle %d is not open for writing", fd)
		}
		if _, err := of.writer.WriteString(text + "\n"); err != nil {
			return Value{}, ioError("tfwrite", err)
		}
		return Int(1), nil
	}}

	builtins["tfflush"] = builtin{1, 1, "tfflush(fd)", func(e *Engine, args []Value) (Value, error) {
		of, err := e.files.get(args[0].ToInt())
		if err != nil {
			return Value{}, err
		}
		if of.writer == nil {
			return Value{}, evalErrorf("tfflush: handle %s is not open for writing", args[0])
		}
		if err := of.writer.Flush(); err != nil {
			return Value{}, ioError("tfflush", err)
		}
		return Int(1), nil
	}}

	builtins["fwrite"] = builtin{2, 2, "fwrite(path, text)", func(e *Engine, args []Value) (Value, error) {
		path := e.resolvePath(args[0].String())
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			return Value{}, ioError("fwrite "+path, err)
		}
		_, err = f.WriteString(args[1].String() + "\n")
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return Value{}, ioError("fwrite "+path, err)
		}
		return Int(1), nil
	}}

	builtins["filename"] = builtin{1, 1, "filename(path)", func(e *Engine, args []Value) (Value, error) {
		return Str(e.resolvePath(args[0].String())), nil
	}}
}
