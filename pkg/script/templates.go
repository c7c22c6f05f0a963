package script

// DefaultHeader defines the shell functions the rendered body calls.
// travis_cmd takes the command as a single escaped word followed by
// --echo, --display=TEXT and --assert.
const DefaultHeader = `#!/bin/bash
source /etc/profile

ANSI_RED="\033[31;1m"
ANSI_GREEN="\033[32;1m"
ANSI_RESET="\033[0m"
ANSI_CLEAR="\033[0K"

TRAVIS_TEST_RESULT=0

travis_terminate() {
  exit $1
}

travis_fold() {
  local action=$1
  local name=$2
  echo -en "travis_fold:${action}:${name}\r${ANSI_CLEAR}"
}

travis_cmd() {
  local cmd=$1 assert echo display result
  shift

  while true; do
    case "$1" in
      --assert) assert=true; shift ;;
      --echo) echo=true; shift ;;
      --display=*) display=${1#--display=}; shift ;;
      *) break ;;
    esac
  done

  if [[ -n "$echo" ]]; then
    echo -e "\$ ${display:-$cmd}"
  fi

  eval "$cmd"
  result=$?

  if [[ $result -ne 0 ]]; then
    if [[ -n "$assert" ]]; then
      echo -e "${ANSI_RED}The command \"$cmd\" failed and exited with $result.${ANSI_RESET}"
      travis_terminate 2
    fi

    TRAVIS_TEST_RESULT=$result
  fi

  return $result
}

`

// DefaultFooter reports the result of the job and exits with it.
const DefaultFooter = `
if [[ $TRAVIS_TEST_RESULT -eq 0 ]]; then
  echo -e "${ANSI_GREEN}Done. Your build exited with 0.${ANSI_RESET}"
else
  echo -e "${ANSI_RED}Done. Your build exited with $TRAVIS_TEST_RESULT.${ANSI_RESET}"
fi

travis_terminate $TRAVIS_TEST_RESULT
`
