package dbtdiscx

const getModelsDocument = `
query GetModels($environmentId: BigInt!, $after: String, $first: Int!, $modelsFilter: ModelAppliedFilter) {
  environment(id: $environmentId) {
    applied {
      models(after: $after, first: $first, filter: $modelsFilter) {
        pageInfo {
          endCursor
        }
        edges {
          node {
            name
            uniqueId
            description
            compiledCode
            catalog {
              columns {
                name
                type
                description
              }
            }
          }
        }
      }
    }
  }
}`

const getModelParentsDocument = `
query GetModelParents($environmentId: BigInt!, $first: Int!, $modelsFilter: ModelAppliedFilter) {
  environment(id: $environmentId) {
    applied {
      models(first: $first, filter: $modelsFilter) {
        edges {
          node {
            name
            parents {
              name
              uniqueId
              description
            }
          }
        }
      }
    }
  }
}`

const getModelChildrenDocument = `
query GetModelChildren($environmentId: BigInt!, $first: Int!, $modelsFilter: ModelAppliedFilter) {
  environment(id: $environmentId) {
    applied {
      models(first: $first, filter: $modelsFilter) {
        edges {
          node {
            name
            children {
              name
              uniqueId
              description
            }
          }
        }
      }
    }
  }
}`
