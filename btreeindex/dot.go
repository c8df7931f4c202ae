package btreeindex

import (
	"fmt"
	"os"
	"os/exec"
)

// ExportDOT writes a Graphviz description of the tree rooted at the
// index's current root to filename, for visual debugging of split
// behavior. It reads every reachable page but pins nothing dirty.
func (ix *Index) ExportDOT(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "digraph BPlusTree {")
	fmt.Fprintln(f, "  graph [ranksep=0.8, nodesep=0.5, bgcolor=\"#ffffff\", rankdir=TB];")
	fmt.Fprintln(f, "  node [shape=none, fontname=\"Helvetica\", fontsize=10];")
	fmt.Fprintln(f, "  edge [arrowsize=0.8, color=\"#444444\"];")

	nodeName := make(map[pageID]string)
	var leafIDs []pageID
	counter := 0

	var export func(id pageID) string
	export = func(id pageID) string {
		if name, ok := nodeName[id]; ok {
			return name
		}
		name := fmt.Sprintf("node%d", counter)
		counter++
		nodeName[id] = name

		p, err := ix.bm.ReadPage(id)
		if err != nil {
			return name
		}
		defer ix.bm.UnpinPage(id, false)

		if isLeaf(p) {
			n := leafNumOccupied(p)
			fill := float64(n) / float64(LeafCapacity) * 100
			label := fmt.Sprintf(`<<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0" CELLPADDING="4">
<TR><TD BGCOLOR="#D5E8D4"><B>PAGE %d (LEAF)</B><BR/><FONT POINT-SIZE="8">Fill: %.1f%%</FONT></TD></TR>
<TR><TD PORT="keys" BGCOLOR="#F5F5F5" ALIGN="LEFT">`, id, fill)
			for i := 0; i < n; i++ {
				label += fmt.Sprintf("<B>%d</B><BR/>", leafKeyAt(p, i))
			}
			sib := leafRightSibling(p)
			sibLabel := "NULL"
			if sib != invalidPage {
				sibLabel = fmt.Sprintf("%d", sib)
			}
			label += fmt.Sprintf(`</TD></TR><TR><TD PORT="next" BGCOLOR="#E1F5FE">Next: %s</TD></TR></TABLE>>`, sibLabel)
			fmt.Fprintf(f, "  %s [label=%s];\n", name, label)
			leafIDs = append(leafIDs, id)
			return name
		}

		n := internalNumOccupied(p)
		fill := float64(n) / float64(InternalCapacity) * 100
		label := fmt.Sprintf(`<<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0" CELLPADDING="4">
<TR><TD COLSPAN="%d" BGCOLOR="#DAE8FC"><B>PAGE %d (INTERNAL, level %d)</B><BR/><FONT POINT-SIZE="8">Fill: %.1f%%</FONT></TD></TR><TR>`,
			2*n+1, id, internalLevel(p), fill)
		for i := 0; i < n; i++ {
			label += fmt.Sprintf(`<TD PORT="c%d" BGCOLOR="#E1F5FE">%d</TD><TD>%d</TD>`, i, internalChildAt(p, i), internalKeyAt(p, i))
		}
		label += fmt.Sprintf(`<TD PORT="c%d" BGCOLOR="#E1F5FE">%d</TD></TR></TABLE>>`, n, internalChildAt(p, n))
		fmt.Fprintf(f, "  %s [label=%s];\n", name, label)

		for i := 0; i <= n; i++ {
			childName := export(internalChildAt(p, i))
			fmt.Fprintf(f, "  %s:c%d -> %s;\n", name, i, childName)
		}
		return name
	}

	export(ix.rootPageID)

	if len(leafIDs) > 1 {
		fmt.Fprintln(f, "  { rank=same;")
		for _, id := range leafIDs {
			fmt.Fprintf(f, "    %s;\n", nodeName[id])
		}
		fmt.Fprintln(f, "  }")
		for _, id := range leafIDs {
			p, err := ix.bm.ReadPage(id)
			if err != nil {
				continue
			}
			sib := leafRightSibling(p)
			ix.bm.UnpinPage(id, false)
			if sib != invalidPage {
				if target, ok := nodeName[sib]; ok {
					fmt.Fprintf(f, "  %s:next -> %s [style=dashed, color=\"#03A9F4\", constraint=false];\n", nodeName[id], target)
				}
			}
		}
	}

	fmt.Fprintln(f, "}")
	return nil
}

// RenderPNG exports the DOT description to dotPath and shells out to the
// Graphviz "dot" tool to render it as a PNG at pngPath.
func (ix *Index) RenderPNG(dotPath, pngPath string) error {
	if err := ix.ExportDOT(dotPath); err != nil {
		return err
	}
	return exec.Command("dot", "-Tpng", dotPath, "-o", pngPath).Run()
}
