package tree

import (
	"bytes"
	"encoding/json"
	"sort"
)

// FilesKey is the reserved key holding the file names of a directory node.
const FilesKey = "files"

// reservedKeyEscape is appended to a child directory whose name collides with FilesKey.
const reservedKeyEscape = "/"

// Node is one directory of the repository structure: the names of the files it directly
// contains and its non-excluded child directories.
type Node struct {
	files    []string
	children map[string]*Node
}

func newNode() *Node {
	return &Node{files: []string{}, children: map[string]*Node{}}
}

// Files returns the names of the files directly inside the directory in walk order.
func (node *Node) Files() []string {
	return append([]string{}, node.files...)
}

// Child returns the child directory with the given name, or nil.
func (node *Node) Child(name string) *Node {
	return node.children[name]
}

// ChildNames returns the names of the child directories in lexical order.
func (node *Node) ChildNames() []string {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ensurePath walks the segments below node, creating empty levels that do not exist yet.
func (node *Node) ensurePath(segments []string) *Node {
	current := node
	for _, segment := range segments {
		child, exists := current.children[segment]
		if !exists {
			child = newNode()
			current.children[segment] = child
		}
		current = child
	}
	return current
}

// MarshalJSON encodes the node as an object with FilesKey first followed by the
// child directories in lexical order.
func (node *Node) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	encodedFiles, filesError := encodeUnescaped(node.files)
	if filesError != nil {
		return nil, filesError
	}
	encodedKey, _ := encodeUnescaped(FilesKey)
	buffer.Write(encodedKey)
	buffer.WriteByte(':')
	buffer.Write(encodedFiles)
	for _, childName := range node.ChildNames() {
		key := childName
		if key == FilesKey {
			key += reservedKeyEscape
		}
		encodedName, nameError := encodeUnescaped(key)
		if nameError != nil {
			return nil, nameError
		}
		encodedChild, childError := node.children[childName].MarshalJSON()
		if childError != nil {
			return nil, childError
		}
		buffer.WriteByte(',')
		buffer.Write(encodedName)
		buffer.WriteByte(':')
		buffer.Write(encodedChild)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// encodeUnescaped encodes value without HTML escaping so names such as a&b.txt stay readable.
func encodeUnescaped(value any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), nil
}
