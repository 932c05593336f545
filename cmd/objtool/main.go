// objtool is a CLI utility for inspecting Wavefront OBJ model files.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/Faultbox/wavefront/pkg/formats"
	"github.com/Faultbox/wavefront/pkg/model"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "materials", "mtl":
		cmdMaterials(args)
	case "validate", "check":
		cmdValidate(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - Wavefront OBJ model utility

Usage:
  objtool <command> [options]

Commands:
  info <file.obj>       Show mesh statistics
  materials <file.obj>  List materials from referenced libraries
  validate <file.obj>   Print every parse diagnostic, exit 1 if any

Examples:
  objtool info teapot.obj
  objtool materials scene.obj
  objtool validate broken.obj`)
}

// parseWithDiagnostics parses an OBJ file and builds its mesh, collecting
// every diagnostic along the way.
func parseWithDiagnostics(path string) (*formats.OBJ, *model.Mesh, []formats.Diagnostic, error) {
	var diags []formats.Diagnostic
	parser := &formats.Parser{
		Diag: func(d formats.Diagnostic) {
			diags = append(diags, d)
		},
	}

	doc, err := parser.ParseOBJFile(path)
	if err != nil {
		return nil, nil, nil, err
	}

	mesh := model.Build(doc, parser.Diag)
	return doc, mesh, diags, nil
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool info <file.obj>")
		os.Exit(1)
	}

	doc, mesh, diags, err := parseWithDiagnostics(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File:       %s\n", args[0])
	fmt.Printf("Positions:  %d\n", len(doc.Positions))
	fmt.Printf("TexCoords:  %d\n", len(doc.TexCoords))
	fmt.Printf("Normals:    %d\n", len(doc.Normals))
	fmt.Printf("Faces:      %d declared, %d accepted\n", len(doc.Faces), mesh.FaceCount())
	fmt.Printf("Vertices:   %d (unwelded)\n", len(mesh.Positions))
	fmt.Printf("Topology:   %s\n", mesh.Topology)
	fmt.Printf("Materials:  %d\n", len(doc.Materials))
	if mesh.Material != nil {
		fmt.Printf("Active:     %s\n", mesh.Material.Name)
	}
	if mesh.FaceCount() > 0 {
		fmt.Printf("Bounds:     min (%.3f, %.3f, %.3f) max (%.3f, %.3f, %.3f)\n",
			mesh.Bounds.Min.X, mesh.Bounds.Min.Y, mesh.Bounds.Min.Z,
			mesh.Bounds.Max.X, mesh.Bounds.Max.Y, mesh.Bounds.Max.Z)
	}
	if len(diags) > 0 {
		fmt.Printf("Warnings:   %d (run 'objtool validate' for details)\n", len(diags))
	}
}

func cmdMaterials(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool materials <file.obj>")
		os.Exit(1)
	}

	doc, _, _, err := parseWithDiagnostics(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(doc.Materials) == 0 {
		fmt.Println("No materials defined.")
		return
	}

	names := make([]string, 0, len(doc.Materials))
	for name := range doc.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := doc.Materials[name]
		fmt.Printf("%s\n", name)
		fmt.Printf("  ambient:   (%.3f, %.3f, %.3f, %.3f)\n", m.Ambient.X, m.Ambient.Y, m.Ambient.Z, m.Ambient.W)
		fmt.Printf("  diffuse:   (%.3f, %.3f, %.3f, %.3f)\n", m.Diffuse.X, m.Diffuse.Y, m.Diffuse.Z, m.Diffuse.W)
		fmt.Printf("  specular:  (%.3f, %.3f, %.3f, %.3f)\n", m.Specular.X, m.Specular.Y, m.Specular.Z, m.Specular.W)
		fmt.Printf("  shininess: %.3f\n", m.Shininess)
		if m.Texture != nil {
			fmt.Printf("  texture:   %s\n", m.Texture.Name)
		}
		if m.Shader != nil {
			fmt.Printf("  shader:    %s\n", m.Shader.Name)
		}
	}
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool validate <file.obj>")
		os.Exit(1)
	}

	_, mesh, diags, err := parseWithDiagnostics(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, d := range diags {
		fmt.Println(d)
	}

	fmt.Printf("%d accepted faces, %d diagnostics\n", mesh.FaceCount(), len(diags))
	if len(diags) > 0 {
		os.Exit(1)
	}
}
