package shell

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"nodeboard/diagram"
	"nodeboard/export"
)

// commandHelp holds the syntax line for each command, in help order.
var commandHelp = []struct {
	name, usage string
}{
	{"ls", "ls"},
	{"new", "new [NAME]"},
	{"open", "open DIAGRAM"},
	{"rename", "rename NAME"},
	{"rm-diagram", "rm-diagram DIAGRAM"},
	{"nodes", "nodes"},
	{"add", "add X Y [TEXT]"},
	{"text", "text NODE TEXT"},
	{"move", "move NODE X Y"},
	{"link", "link FROM TO"},
	{"unlink", "unlink CONNECTION"},
	{"del", "del NODE"},
	{"clear", "clear"},
	{"show", "show"},
	{"export", "export FORMAT [FILE]"},
	{"help", "help"},
	{"quit", "quit"},
}

// mutating commands report when their change could not be saved.
var mutating = map[string]bool{
	"new": true, "rename": true, "rm-diagram": true,
	"add": true, "text": true, "move": true, "link": true,
	"unlink": true, "del": true, "clear": true,
}

func usage(name string) error {
	for _, c := range commandHelp {
		if c.name == name {
			return fmt.Errorf("usage: %s", c.usage)
		}
	}
	return fmt.Errorf("unknown command: %s", name)
}

func (s *Shell) execute(name string, args []string) error {
	switch name {
	case "ls":
		return s.handleList()
	case "new":
		return s.handleNew(args)
	case "open":
		return s.handleOpen(args)
	case "rename":
		return s.handleRename(args)
	case "rm-diagram":
		return s.handleRemoveDiagram(args)
	case "nodes":
		return s.handleNodes()
	case "add":
		return s.handleAdd(args)
	case "text":
		return s.handleText(args)
	case "move":
		return s.handleMove(args)
	case "link":
		return s.handleLink(args)
	case "unlink":
		return s.handleUnlink(args)
	case "del":
		return s.handleDelete(args)
	case "clear":
		s.store.ClearBoard()
		fmt.Fprintln(s.out, "Board cleared")
		return nil
	case "show":
		return s.handleShow()
	case "export":
		return s.handleExport(args)
	case "help":
		for _, c := range commandHelp {
			fmt.Fprintf(s.out, "  %s\n", c.usage)
		}
		return nil
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command: %s", name)
	}
}

func (s *Shell) handleList() error {
	diagrams := s.store.Diagrams()
	if len(diagrams) == 0 {
		fmt.Fprintln(s.out, "No diagrams")
		return nil
	}
	active := s.store.ActiveID()
	for _, d := range diagrams {
		marker := " "
		if d.ID == active {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %s  %s (%d nodes, %d links)\n",
			marker, short(d.ID), d.Name, len(d.Nodes), len(d.Connections))
	}
	return nil
}

func (s *Shell) handleNew(args []string) error {
	d := s.store.CreateDiagram(strings.Join(args, " "))
	fmt.Fprintf(s.out, "Created %s  %s\n", short(d.ID), d.Name)
	return nil
}

func (s *Shell) handleOpen(args []string) error {
	if len(args) < 1 {
		return usage("open")
	}
	id, err := s.diagramID(args[0])
	if err != nil {
		return err
	}
	if err := s.store.LoadDiagram(id); err != nil {
		return err
	}
	d, _ := s.store.Active()
	fmt.Fprintf(s.out, "Opened %s\n", d.Name)
	return nil
}

func (s *Shell) handleRename(args []string) error {
	if len(args) < 1 {
		return usage("rename")
	}
	if !s.store.RenameDiagram(strings.Join(args, " ")) {
		return fmt.Errorf("rename rejected: no active diagram or blank name")
	}
	fmt.Fprintln(s.out, "Renamed")
	return nil
}

func (s *Shell) handleRemoveDiagram(args []string) error {
	if len(args) < 1 {
		return usage("rm-diagram")
	}
	id, err := s.diagramID(args[0])
	if err != nil {
		return err
	}
	if err := s.store.DeleteDiagram(id); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Deleted diagram %s\n", short(id))
	return nil
}

func (s *Shell) handleNodes() error {
	nodes := s.store.Nodes()
	if len(nodes) == 0 {
		fmt.Fprintln(s.out, "No nodes")
	}
	for _, n := range nodes {
		fmt.Fprintf(s.out, "%s  (%g, %g)  %s\n", short(n.ID), n.X, n.Y, n.Text)
	}
	for _, c := range s.store.Connections() {
		fmt.Fprintf(s.out, "%s  %s -- %s\n", short(c.ID), short(c.From), short(c.To))
	}
	return nil
}

func parsePoint(xs, ys string) (diagram.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return diagram.Point{}, fmt.Errorf("invalid x %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return diagram.Point{}, fmt.Errorf("invalid y %q", ys)
	}
	return diagram.Point{X: x, Y: y}, nil
}

func (s *Shell) handleAdd(args []string) error {
	if len(args) < 2 {
		return usage("add")
	}
	p, err := parsePoint(args[0], args[1])
	if err != nil {
		return err
	}
	n := s.store.AddNode(diagram.Node{X: p.X, Y: p.Y, Text: strings.Join(args[2:], " ")})
	fmt.Fprintf(s.out, "Added node %s\n", short(n.ID))
	return nil
}

func (s *Shell) handleText(args []string) error {
	if len(args) < 2 {
		return usage("text")
	}
	id, err := s.nodeID(args[0])
	if err != nil {
		return err
	}
	if !s.store.CommitNodeText(id, strings.Join(args[1:], " ")) {
		return fmt.Errorf("label left unchanged: text is blank")
	}
	fmt.Fprintln(s.out, "Label updated")
	return nil
}

func (s *Shell) handleMove(args []string) error {
	if len(args) < 3 {
		return usage("move")
	}
	id, err := s.nodeID(args[0])
	if err != nil {
		return err
	}
	p, err := parsePoint(args[1], args[2])
	if err != nil {
		return err
	}
	s.store.UpdateNode(id, diagram.MoveTo(p))
	fmt.Fprintln(s.out, "Moved")
	return nil
}

func (s *Shell) handleLink(args []string) error {
	if len(args) < 2 {
		return usage("link")
	}
	from, err := s.nodeID(args[0])
	if err != nil {
		return err
	}
	to, err := s.nodeID(args[1])
	if err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("a node cannot link to itself")
	}
	c, ok := s.store.AddConnection(diagram.Connection{From: from, To: to})
	if !ok {
		return fmt.Errorf("link rejected")
	}
	fmt.Fprintf(s.out, "Linked %s\n", short(c.ID))
	return nil
}

func (s *Shell) handleUnlink(args []string) error {
	if len(args) < 1 {
		return usage("unlink")
	}
	id, err := s.connectionID(args[0])
	if err != nil {
		return err
	}
	s.store.RemoveConnection(id)
	fmt.Fprintln(s.out, "Unlinked")
	return nil
}

func (s *Shell) handleDelete(args []string) error {
	if len(args) < 1 {
		return usage("del")
	}
	id, err := s.nodeID(args[0])
	if err != nil {
		return err
	}
	s.store.RemoveNode(id)
	fmt.Fprintln(s.out, "Deleted")
	return nil
}

func (s *Shell) handleShow() error {
	d := s.current()
	if len(d.Nodes) == 0 {
		fmt.Fprintln(s.out, "(empty board)")
		return nil
	}
	out, err := export.NewASCIIExporter().Export(d)
	if err != nil {
		return err
	}
	_, err = s.out.Write(out)
	return err
}

func (s *Shell) handleExport(args []string) error {
	if len(args) < 1 {
		return usage("export")
	}
	format, err := export.ParseFormat(args[0])
	if err != nil {
		return err
	}
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}
	out, err := exporter.Export(s.current())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if len(args) < 2 {
		if format == export.FormatPNG {
			return fmt.Errorf("png output needs a file name")
		}
		_, err = s.out.Write(out)
		return err
	}
	if err := os.WriteFile(args[1], out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[1], err)
	}
	fmt.Fprintf(s.out, "Wrote %s (%d bytes)\n", args[1], len(out))
	return nil
}
