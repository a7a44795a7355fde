package project

// contextDescription explains the document to the language model it is pasted into.
const contextDescription = `This context data describes the structure and metadata of a Python project.
It includes:

* **Project Name:** the name of the project.
* **Python Version:** the Python version the project requires.
* **Dependencies:** packages the project needs at runtime.
* **Dev Dependencies:** packages needed for development and testing.
* **Requirements:** entries of requirements.txt, when present.
* **Testing Framework:** the detected test framework, when one is found.
* **Repository Structure:** the directories of the project and the files inside each.

Use it as background information when answering questions or writing code for this project.`
