package dbtslx

const listMetricsDocument = `query ListMetrics($environmentId: BigInt!) {
  metrics(environmentId: $environmentId) {
    name
    type
    label
    description
  }
}`

const listDimensionsDocument = `query ListDimensions($environmentId: BigInt!, $metrics: [MetricInput!]!) {
  dimensions(environmentId: $environmentId, metrics: $metrics) {
    name
    type
    label
    description
    queryableGranularities
    queryableTimeGranularities
  }
}`

const listEntitiesDocument = `query ListEntities($environmentId: BigInt!, $metrics: [MetricInput!]!) {
  entities(environmentId: $environmentId, metrics: $metrics) {
    name
    type
    description
  }
}`

const listSavedQueriesDocument = `query ListSavedQueries($environmentId: BigInt!) {
  savedQueries(environmentId: $environmentId) {
    name
    label
    description
    queryParams {
      metrics {
        name
      }
      groupBy {
        name
        grain
      }
    }
  }
}`

const createQueryDocument = `mutation CreateQuery($environmentId: BigInt!, $metrics: [MetricInput!], $groupBy: [GroupByInput!], $where: [WhereInput!], $orderBy: [OrderByInput!], $limit: Int, $savedQuery: String) {
  createQuery(environmentId: $environmentId, metrics: $metrics, groupBy: $groupBy, where: $where, orderBy: $orderBy, limit: $limit, savedQuery: $savedQuery) {
    queryId
  }
}`

const queryStatusDocument = `query QueryStatus($environmentId: BigInt!, $queryId: String!) {
  query(environmentId: $environmentId, queryId: $queryId) {
    status
    error
    totalPages
  }
}`

const fetchJsonResultDocument = `query FetchJsonResult($environmentId: BigInt!, $queryId: String!, $pageNum: Int!) {
  query(environmentId: $environmentId, queryId: $queryId, pageNum: $pageNum) {
    status
    error
    jsonResult(encoded: false)
  }
}`

const fetchArrowResultDocument = `query FetchArrowResult($environmentId: BigInt!, $queryId: String!, $pageNum: Int!) {
  query(environmentId: $environmentId, queryId: $queryId, pageNum: $pageNum) {
    status
    error
    arrowResult
  }
}`
